package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type sagaEnv struct {
	platform  *fakePlatform
	invoices  *fakeInvoices
	messenger *fakeMessenger
	ledger    *fakeLedger
	uc        *sales.ProcessSaleUseCase
}

var fixedNow = time.Date(2025, 7, 25, 20, 30, 45, 0, time.UTC)

func newSagaEnv(t *testing.T, cfg sales.SagaConfig) *sagaEnv {
	t.Helper()
	env := &sagaEnv{
		platform:  newFakePlatform(),
		invoices:  &fakeInvoices{},
		messenger: &fakeMessenger{},
		ledger:    &fakeLedger{},
	}
	loc, err := time.LoadLocation("America/Guatemala")
	if err != nil {
		loc = time.FixedZone("CST", -6*3600)
	}
	clock := func() time.Time { return fixedNow }
	env.uc = sales.NewProcessSaleUseCase(
		sales.NewCustomerResolver(env.platform),
		sales.NewOrderBuilder(env.platform, map[int]string{30: "gid://shopify/PaymentTermsTemplate/4"}),
		sales.NewInvoiceIssuer(env.invoices, clock),
		sales.NewPaymentFulfillment(env.platform),
		sales.NewNotificationDispatcher(env.messenger),
		sales.NewLedgerWriter(env.ledger, "POS", loc, clock),
		cfg,
		zerolog.Nop(),
	)
	return env
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// saleRequest venta de Q100.00 (60 + 40) con Q10.00 de descuento.
func saleRequest() entity.SaleRequest {
	return entity.SaleRequest{
		CustomerMode: entity.CustomerNew,
		Phone:        "+502 5555 1234",
		Tax: entity.TaxInfo{
			TaxCode: "1234567-8",
			TaxName: "COMERCIAL EL QUETZAL",
			Address: entity.Address{Street: "6a Avenida 10-20", City: "Guatemala", State: "Guatemala", Zip: "01001", Country: "GT"},
		},
		Items: []entity.LineItem{
			{VariantID: "gid://shopify/ProductVariant/11", Title: "Café 1lb", Quantity: 2, UnitPrice: dec("30.00")},
			{Title: "Taza personalizada", Quantity: 1, UnitPrice: dec("40.00")},
		},
		Discount:      dec("10.00"),
		PaymentMethod: "Efectivo",
	}
}

func warningSteps(res *sales.SaleResult) []string {
	out := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		out = append(out, w.Step)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta exitosa
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessSale_ContadoCompleta(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})

	res, err := env.uc.Execute(context.Background(), saleRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, res.SaleID)
	assert.Equal(t, "#1001", res.OrderNumber, "se reporta el número de la orden completada")
	assert.True(t, res.Total.Equal(dec("90.00")))
	assert.Equal(t, "UUID-1", res.Invoice.UUID)
	assert.Equal(t, sales.PaymentPaid, res.PaymentStatus)
	assert.True(t, res.Fulfilled)
	assert.Equal(t, sales.DeliveryTemplate, res.Delivery)
	assert.True(t, res.LedgerWritten)
	assert.Empty(t, res.Warnings)

	// Tienda: cliente nuevo, borrador, descuento fijo, completado sin pago pendiente, pagada y entregada.
	require.Len(t, env.platform.createdInputs, 1)
	assert.Equal(t, []string{"POS", "FEL", "NUEVO"}, env.platform.createdInputs[0].Tags)
	assert.Equal(t, "12345678", env.platform.createdInputs[0].LastName)
	require.Len(t, env.platform.drafts, 1)
	assert.Contains(t, env.platform.drafts[0].Tags, sales.TagNewCustomer)
	assert.Contains(t, env.platform.drafts[0].Tags, sales.TagCash)
	assert.Contains(t, env.platform.drafts[0].Note, "Descuento: Q10.00")
	require.Len(t, env.platform.discounts, 1)
	assert.True(t, env.platform.discounts[0].Equal(dec("10")))
	assert.Equal(t, []bool{false}, env.platform.completions)
	assert.Equal(t, []string{"gid://shopify/Order/1001"}, env.platform.markedPaid)
	assert.Equal(t, []string{"gid://shopify/Order/1001/fo/1"}, env.platform.fulfillments, "solo se entregan las abiertas")

	// Factura: descuento repartido 6.00 / 4.00, total 90, IVA 9.64.
	require.Len(t, env.invoices.issued, 1)
	draft := env.invoices.issued[0]
	assert.True(t, draft.Lines[0].Discount.Equal(dec("6.00")))
	assert.True(t, draft.Lines[1].Discount.Equal(dec("4.00")))
	assert.True(t, draft.Total.Equal(dec("90.00")))
	assert.True(t, draft.Tax.Equal(dec("9.64")))

	// Libro: una fila con el número final y estado paid.
	require.Len(t, env.ledger.rows, 1)
	row := env.ledger.rows[0]
	assert.Equal(t, "#1001", row.OrderNumber)
	assert.Equal(t, entity.LedgerStatusPaid, row.Status)
	assert.Equal(t, "UUID-1", row.InvoiceUUID)
	assert.Equal(t, "POS - EFECTIVO", row.Channel)
	assert.Equal(t, "12345678", row.TaxCode)
	assert.Contains(t, row.ProductsJSON, `"discount":"6.00"`)
}

func TestProcessSale_NotificacionUsaNumeroFinal(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})

	res, err := env.uc.Execute(context.Background(), saleRequest())
	require.NoError(t, err)

	require.Len(t, env.messenger.templates, 1)
	msg := env.messenger.templates[0]
	assert.Equal(t, "50255551234", msg.To)
	assert.Equal(t, []string{"COMERCIAL EL QUETZAL", "COMERCIAL EL QUETZAL", res.OrderNumber}, msg.BodyParams)
	assert.NotContains(t, msg.BodyParams, "#D1", "nunca se envía el nombre del borrador")
	assert.Equal(t, "Factura_123456789.pdf", msg.DocumentFilename)
}

// ──────────────────────────────────────────────────────────────────────────────
// Crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessSale_CreditoNuncaPagada(t *testing.T) {
	for _, method := range []string{"", "Efectivo", "Tarjeta", "PAID"} {
		t.Run("metodo="+method, func(t *testing.T) {
			env := newSagaEnv(t, sales.SagaConfig{})
			req := saleRequest()
			req.Credit = true
			req.CreditDays = 30
			req.PaymentMethod = method

			res, err := env.uc.Execute(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, sales.PaymentPending, res.PaymentStatus)
			assert.True(t, res.Fulfilled, "la venta al crédito también se entrega")
			assert.Equal(t, []bool{true}, env.platform.completions, "se completa con pago pendiente")
			assert.Empty(t, env.platform.markedPaid, "nunca se marca pagada")
			assert.Equal(t, "gid://shopify/PaymentTermsTemplate/4", env.platform.drafts[0].PaymentTermsTemplateID)
			assert.Contains(t, env.platform.drafts[0].Tags, sales.TagCredit)

			require.Len(t, env.ledger.rows, 1)
			assert.Equal(t, entity.LedgerStatusPending, env.ledger.rows[0].Status)
			assert.Equal(t, "POS - CRÉDITO 30 DÍAS", env.ledger.rows[0].Channel)
		})
	}
}

func TestProcessSale_ContadoYaPagadoNoSeMarcaDeNuevo(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	env.platform.orderFinancialStatus = entity.FinancialStatusPaid

	res, err := env.uc.Execute(context.Background(), saleRequest())
	require.NoError(t, err)
	assert.Equal(t, sales.PaymentPaid, res.PaymentStatus)
	assert.Empty(t, env.platform.markedPaid)
	assert.True(t, res.Fulfilled)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos fatales
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessSale_TelefonoDuplicadoAbortaAntesDeLaOrden(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	env.platform.customers = []entity.Customer{{ID: "gid://shopify/Customer/7", FirstName: "Ana", LastName: "López", Phone: "+50255551234"}}

	res, err := env.uc.Execute(context.Background(), saleRequest())
	require.Error(t, err)
	assert.Nil(t, res)

	assert.True(t, errors.Is(err, domain.ErrDuplicatePhone))
	var dup *domain.DuplicatePhoneError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "gid://shopify/Customer/7", dup.CustomerID)
	assert.Equal(t, "Ana López", dup.Name)

	var stepErr *sales.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, sales.StepResolveCustomer, stepErr.Step)

	assert.Empty(t, env.platform.createdInputs)
	assert.Empty(t, env.platform.drafts, "no se crea ninguna orden")
	assert.Empty(t, env.invoices.issued)
	assert.Empty(t, env.ledger.rows, "no se escribe en el libro")
}

func TestProcessSale_FacturaRechazadaAbortaDespuesDeLaOrden(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	env.invoices.invalid = true

	res, err := env.uc.Execute(context.Background(), saleRequest())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, domain.ErrInvoiceRejected))
	assert.Contains(t, err.Error(), sales.StepIssueInvoice)

	assert.Len(t, env.platform.drafts, 1, "la orden ya existía")
	assert.Empty(t, env.platform.deletedDrafts, "sin compensación configurada el borrador queda")
	assert.Empty(t, env.platform.completions)
	assert.Empty(t, env.messenger.templates, "no se notifica")
	assert.Empty(t, env.messenger.texts)
	assert.Empty(t, env.ledger.rows, "no se escribe en el libro")
}

func TestProcessSale_FacturaRechazadaConCompensacionEliminaBorrador(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{VoidDraftOnInvoiceFailure: true})
	env.invoices.issueErr = errUnavailable

	_, err := env.uc.Execute(context.Background(), saleRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvoiceRejected))
	assert.Equal(t, []string{"gid://shopify/DraftOrder/1"}, env.platform.deletedDrafts)
}

func TestProcessSale_ErrorCreandoOrden(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{VoidDraftOnInvoiceFailure: true})
	env.platform.draftErr = errUnavailable

	_, err := env.uc.Execute(context.Background(), saleRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOrderCreateFailed))
	assert.Empty(t, env.platform.deletedDrafts)
	assert.Empty(t, env.invoices.issued)
}

func TestProcessSale_ErrorCreandoCliente(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	env.platform.createErr = errUnavailable

	_, err := env.uc.Execute(context.Background(), saleRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCustomerWriteFailed))
	assert.Empty(t, env.platform.drafts)
}

func TestProcessSale_ValidacionAntesDeLlamadasExternas(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	req := saleRequest()
	req.Items = nil

	_, err := env.uc.Execute(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, env.platform.createdInputs)
	assert.Empty(t, env.platform.drafts)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos no fatales
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessSale_ClienteExistenteFalloTelefonoNoEsFatal(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	env.platform.updatePhoneErr = errUnavailable
	req := saleRequest()
	req.CustomerMode = entity.CustomerExisting
	req.CustomerID = "gid://shopify/Customer/55"

	res, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{sales.StepUpdatePhone}, warningSteps(res))
	assert.Empty(t, env.platform.createdInputs, "no se crea cliente")
	assert.Equal(t, "gid://shopify/Customer/55", env.platform.drafts[0].CustomerID)
	assert.Contains(t, env.platform.drafts[0].Tags, sales.TagExistingCustomer)
}

func TestProcessSale_FallosNoFatalesSeReportanComoAdvertencias(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	env.platform.discountErr = errUnavailable
	env.platform.fulfillErr = errUnavailable
	env.messenger.templateErr = errUnavailable
	env.ledger.appendErr = errUnavailable

	res, err := env.uc.Execute(context.Background(), saleRequest())
	require.NoError(t, err, "la factura existe: la venta es exitosa")

	assert.Equal(t, []string{
		sales.StepApplyDiscount, sales.StepFulfillOrder, sales.StepNotifyCustomer, sales.StepWriteLedger,
	}, warningSteps(res))
	assert.Equal(t, "#1001", res.OrderNumber)
	assert.Equal(t, "UUID-1", res.Invoice.UUID)
	assert.Equal(t, sales.PaymentPaid, res.PaymentStatus)
	assert.False(t, res.Fulfilled)
	assert.False(t, res.LedgerWritten)
	assert.Empty(t, env.messenger.texts, "solo hay texto de respaldo si la plantilla fue rechazada")
}

func TestProcessSale_CompletadoFallidoNoNotifica(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	env.platform.completeErr = errUnavailable

	res, err := env.uc.Execute(context.Background(), saleRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{sales.StepCompleteOrder}, warningSteps(res))
	assert.Equal(t, sales.PaymentUnknown, res.PaymentStatus)
	assert.Empty(t, env.messenger.templates, "sin número definitivo no se notifica")
	assert.Empty(t, env.platform.fulfillments, "sin orden no hay entrega")
	require.Len(t, env.ledger.rows, 1)
	assert.Equal(t, "#D1", env.ledger.rows[0].OrderNumber)
	assert.Equal(t, entity.LedgerStatusDraft, env.ledger.rows[0].Status, "la fila del borrador queda marcada para revisión")
}

func TestProcessSale_MarcarPagadaFallida(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	env.platform.markPaidErr = errUnavailable

	res, err := env.uc.Execute(context.Background(), saleRequest())
	require.NoError(t, err, "la factura existe: la venta es exitosa")

	assert.Equal(t, []string{sales.StepSettlePayment}, warningSteps(res))
	assert.Equal(t, sales.PaymentUnknown, res.PaymentStatus)
	assert.Empty(t, env.platform.markedPaid)

	assert.Equal(t, []string{"gid://shopify/Order/1001/fo/1"}, env.platform.fulfillments, "la entrega no depende del cobro")
	assert.True(t, res.Fulfilled)
	assert.Equal(t, sales.DeliveryTemplate, res.Delivery)

	require.Len(t, env.ledger.rows, 1)
	row := env.ledger.rows[0]
	assert.Equal(t, "#1001", row.OrderNumber)
	assert.NotEqual(t, entity.LedgerStatusPaid, row.Status)
	assert.Equal(t, entity.LedgerStatusUnconfirmed, row.Status)
}

func TestProcessSale_SinLibroConfigurado(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	uc := sales.NewProcessSaleUseCase(
		sales.NewCustomerResolver(env.platform),
		sales.NewOrderBuilder(env.platform, nil),
		sales.NewInvoiceIssuer(env.invoices, nil),
		sales.NewPaymentFulfillment(env.platform),
		sales.NewNotificationDispatcher(env.messenger),
		nil,
		sales.SagaConfig{},
		zerolog.Nop(),
	)

	res, err := uc.Execute(context.Background(), saleRequest())
	require.NoError(t, err)
	assert.False(t, res.LedgerWritten)
	assert.Empty(t, res.Warnings)
}

func TestProcessSale_SinDescuentoNoSeAplica(t *testing.T) {
	env := newSagaEnv(t, sales.SagaConfig{})
	req := saleRequest()
	req.Discount = decimal.Zero

	res, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, env.platform.discounts)
	assert.True(t, res.Total.Equal(dec("100")))
	for _, l := range env.invoices.issued[0].Lines {
		assert.True(t, l.Discount.IsZero())
	}
}
