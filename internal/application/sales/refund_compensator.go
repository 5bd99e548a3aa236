package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// Resultado del procesamiento de un reembolso.
type RefundOutcome string

const (
	RefundLedgerUnavailable RefundOutcome = "ledger_unavailable"
	RefundNotFound          RefundOutcome = "not_found"
	RefundNoInvoice         RefundOutcome = "no_invoice"
	RefundAlreadyCancelled  RefundOutcome = "already_cancelled"
	RefundCancelled         RefundOutcome = "cancelled"
	RefundCancelFailed      RefundOutcome = "cancel_failed"
)

// RefundEvent webhook refunds/create de la tienda.
type RefundEvent struct {
	OrderID  string // id numérico o GID de la orden
	RefundID string
}

// RefundCompensator anula la factura de una orden reembolsada y actualiza su fila en el libro.
type RefundCompensator struct {
	ledger   Ledger
	invoices InvoiceService
	orders   OrderLookup // opcional
	log      zerolog.Logger
}

// NewRefundCompensator construye el compensador. ledger y orders pueden ser nil.
func NewRefundCompensator(ledger Ledger, invoices InvoiceService, orders OrderLookup, log zerolog.Logger) *RefundCompensator {
	return &RefundCompensator{ledger: ledger, invoices: invoices, orders: orders, log: log}
}

// Handle nunca devuelve error: el origen del evento siempre recibe éxito para no reenviarlo.
// Dos eventos para la misma orden anulan la factura una sola vez.
func (c *RefundCompensator) Handle(ctx context.Context, ev RefundEvent) RefundOutcome {
	ctx, span := tracer.Start(ctx, "refund.compensate", trace.WithAttributes(
		attribute.String("refund.id", ev.RefundID),
		attribute.String("order.id", ev.OrderID),
	))
	defer span.End()

	log := c.log.With().Str("order_id", ev.OrderID).Str("refund_id", ev.RefundID).Logger()
	outcome := c.handle(ctx, ev, log)
	span.SetAttributes(attribute.String("refund.outcome", string(outcome)))
	if outcome == RefundCancelFailed {
		span.SetStatus(codes.Error, "anulación fallida")
	}
	return outcome
}

func (c *RefundCompensator) handle(ctx context.Context, ev RefundEvent, log zerolog.Logger) RefundOutcome {
	if c.ledger == nil {
		log.Warn().Msg("reembolso recibido sin libro contable configurado")
		return RefundLedgerUnavailable
	}
	rows, err := c.ledger.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("leer libro contable")
		return RefundLedgerUnavailable
	}

	candidates := c.orderCandidates(ctx, ev, log)
	var row *entity.LedgerRecord
	for i := range rows {
		if rows[i].MatchesOrder(candidates...) {
			row = &rows[i]
			break
		}
	}
	if row == nil {
		log.Warn().Strs("candidates", candidates).Msg("orden reembolsada no está en el libro")
		return RefundNotFound
	}
	log = log.With().Str("order_number", row.OrderNumber).Int("row", row.RowIndex).Logger()

	if strings.TrimSpace(row.InvoiceUUID) == "" {
		log.Warn().Msg("fila sin UUID de factura, no hay nada que anular")
		return RefundNoInvoice
	}
	if row.IsCancelled() {
		log.Info().Str("status", row.Status).Msg("factura ya anulada")
		return RefundAlreadyCancelled
	}

	reason := fmt.Sprintf("Devolución automática - Refund ID: %s", ev.RefundID)
	if err := c.invoices.Cancel(ctx, row.InvoiceUUID, reason); err != nil {
		log.Error().Err(err).Str("uuid", row.InvoiceUUID).Msg("anular factura")
		if uerr := c.ledger.UpdateStatus(ctx, row.RowIndex, entity.LedgerStatusCancelFailed); uerr != nil {
			log.Error().Err(uerr).Msg("marcar fila con error de anulación")
		}
		return RefundCancelFailed
	}
	if err := c.ledger.UpdateStatus(ctx, row.RowIndex, entity.LedgerStatusRefunded); err != nil {
		log.Error().Err(err).Msg("factura anulada pero la fila no se actualizó")
	}
	log.Info().Str("uuid", row.InvoiceUUID).Msg("factura anulada por devolución")
	return RefundCancelled
}

// orderCandidates posibles valores de la columna PEDIDOS para la orden del evento:
// "#" + id, el id recibido, el id sin prefijo GID y el nombre real de la orden si se puede consultar.
func (c *RefundCompensator) orderCandidates(ctx context.Context, ev RefundEvent, log zerolog.Logger) []string {
	id := strings.TrimSpace(ev.OrderID)
	last := id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		last = id[i+1:]
	}
	out := []string{"#" + last, id, last}
	if c.orders != nil && id != "" {
		name, err := c.orders.OrderName(ctx, id)
		if err != nil {
			log.Debug().Err(err).Msg("consultar nombre de la orden")
		} else if name != "" {
			out = append(out, name)
		}
	}
	return out
}
