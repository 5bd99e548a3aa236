package sales_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

func ledgerWithRow(uuid, status string) *fakeLedger {
	return &fakeLedger{rows: []entity.LedgerRecord{
		{RowIndex: 2, OrderNumber: "#1000", InvoiceUUID: "OTRA", Status: entity.LedgerStatusPaid},
		{RowIndex: 3, OrderNumber: "#1024", InvoiceUUID: uuid, Status: status},
	}}
}

func TestRefundCompensator_AnulaYMarcaDevolucion(t *testing.T) {
	ledger := ledgerWithRow("UUID-9", entity.LedgerStatusPaid)
	inv := &fakeInvoices{}
	c := sales.NewRefundCompensator(ledger, inv, nil, zerolog.Nop())

	out := c.Handle(context.Background(), sales.RefundEvent{OrderID: "gid://shopify/Order/1024", RefundID: "998877"})

	assert.Equal(t, sales.RefundCancelled, out)
	assert.Equal(t, []string{"UUID-9"}, inv.cancelled)
	assert.Equal(t, "Devolución automática - Refund ID: 998877", inv.reasons[0])
	assert.Equal(t, entity.LedgerStatusRefunded, ledger.status("#1024"))
	assert.Equal(t, entity.LedgerStatusPaid, ledger.status("#1000"), "las demás filas no cambian")
}

func TestRefundCompensator_Idempotente(t *testing.T) {
	ledger := ledgerWithRow("UUID-9", entity.LedgerStatusPaid)
	inv := &fakeInvoices{}
	c := sales.NewRefundCompensator(ledger, inv, nil, zerolog.Nop())
	ev := sales.RefundEvent{OrderID: "1024", RefundID: "1"}

	require.Equal(t, sales.RefundCancelled, c.Handle(context.Background(), ev))
	updatesAfterFirst := ledger.updates

	out := c.Handle(context.Background(), ev)
	assert.Equal(t, sales.RefundAlreadyCancelled, out)
	assert.Len(t, inv.cancelled, 1, "la segunda llamada no contacta al certificador")
	assert.Equal(t, updatesAfterFirst, ledger.updates, "la segunda llamada no toca el libro")
	assert.Equal(t, entity.LedgerStatusRefunded, ledger.status("#1024"))
}

func TestRefundCompensator_AnuladoManualmenteEsNoOp(t *testing.T) {
	for _, status := range []string{"ANULADO", "anulado - devolucion"} {
		ledger := ledgerWithRow("UUID-9", status)
		inv := &fakeInvoices{}
		c := sales.NewRefundCompensator(ledger, inv, nil, zerolog.Nop())

		out := c.Handle(context.Background(), sales.RefundEvent{OrderID: "1024", RefundID: "1"})
		assert.Equal(t, sales.RefundAlreadyCancelled, out, "estado %q", status)
		assert.Empty(t, inv.cancelled)
	}
}

func TestRefundCompensator_SinUUIDNoAnula(t *testing.T) {
	ledger := ledgerWithRow("", entity.LedgerStatusPaid)
	inv := &fakeInvoices{}
	c := sales.NewRefundCompensator(ledger, inv, nil, zerolog.Nop())

	out := c.Handle(context.Background(), sales.RefundEvent{OrderID: "1024", RefundID: "1"})
	assert.Equal(t, sales.RefundNoInvoice, out)
	assert.Empty(t, inv.cancelled)
	assert.Zero(t, ledger.updates)
}

func TestRefundCompensator_FalloDeAnulacionQuedaVisible(t *testing.T) {
	ledger := ledgerWithRow("UUID-9", entity.LedgerStatusPaid)
	inv := &fakeInvoices{cancelErr: errUnavailable}
	c := sales.NewRefundCompensator(ledger, inv, nil, zerolog.Nop())
	ev := sales.RefundEvent{OrderID: "1024", RefundID: "1"}

	assert.Equal(t, sales.RefundCancelFailed, c.Handle(context.Background(), ev))
	assert.Equal(t, entity.LedgerStatusCancelFailed, ledger.status("#1024"))

	// Un reenvío del evento reintenta la anulación.
	inv.cancelErr = nil
	assert.Equal(t, sales.RefundCancelled, c.Handle(context.Background(), ev))
	assert.Len(t, inv.cancelled, 2)
	assert.Equal(t, entity.LedgerStatusRefunded, ledger.status("#1024"))
}

func TestRefundCompensator_OrdenNoEncontrada(t *testing.T) {
	ledger := ledgerWithRow("UUID-9", entity.LedgerStatusPaid)
	inv := &fakeInvoices{}
	c := sales.NewRefundCompensator(ledger, inv, nil, zerolog.Nop())

	assert.Equal(t, sales.RefundNotFound, c.Handle(context.Background(), sales.RefundEvent{OrderID: "5555"}))
	assert.Empty(t, inv.cancelled)
}

func TestRefundCompensator_UsaNombreRealDeLaOrden(t *testing.T) {
	// El id de la orden no coincide con su número visible: se consulta a la tienda.
	ledger := ledgerWithRow("UUID-9", entity.LedgerStatusPaid)
	inv := &fakeInvoices{}
	lookup := fakeOrderLookup{"5830012345": "#1024"}
	c := sales.NewRefundCompensator(ledger, inv, lookup, zerolog.Nop())

	out := c.Handle(context.Background(), sales.RefundEvent{OrderID: "5830012345", RefundID: "7"})
	assert.Equal(t, sales.RefundCancelled, out)
	assert.Equal(t, []string{"UUID-9"}, inv.cancelled)
}

func TestRefundCompensator_SinLibro(t *testing.T) {
	inv := &fakeInvoices{}
	c := sales.NewRefundCompensator(nil, inv, nil, zerolog.Nop())
	assert.Equal(t, sales.RefundLedgerUnavailable, c.Handle(context.Background(), sales.RefundEvent{OrderID: "1"}))

	c = sales.NewRefundCompensator(&fakeLedger{listErr: errUnavailable}, inv, nil, zerolog.Nop())
	assert.Equal(t, sales.RefundLedgerUnavailable, c.Handle(context.Background(), sales.RefundEvent{OrderID: "1"}))
	assert.Empty(t, inv.cancelled)
}
