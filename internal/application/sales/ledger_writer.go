package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// LedgerTimeLayout formato de la columna FECHA (DD/MM/YYYY HH:MM:SS).
const LedgerTimeLayout = "02/01/2006 15:04:05"

// LedgerEntry datos de una venta terminada para el libro.
type LedgerEntry struct {
	Request     entity.SaleRequest
	Customer    entity.ResolvedCustomer
	OrderNumber string
	Invoice     entity.TaxInvoice
	Discounts   []string // descuento asignado por línea, mismo orden que Request.Items
	Payment     string   // PaymentPaid, PaymentPending o PaymentUnknown
	Draft       bool     // la orden no se completó y OrderNumber es el nombre del borrador
}

// LedgerWriter agrega una fila por venta al libro contable.
type LedgerWriter struct {
	ledger  Ledger
	channel string
	loc     *time.Location
	now     func() time.Time
}

// NewLedgerWriter construye el escritor. loc es la zona horaria de la columna FECHA.
func NewLedgerWriter(ledger Ledger, channel string, loc *time.Location, now func() time.Time) *LedgerWriter {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if channel == "" {
		channel = "POS"
	}
	return &LedgerWriter{ledger: ledger, channel: channel, loc: loc, now: now}
}

// Enabled indica si hay libro configurado.
func (w *LedgerWriter) Enabled() bool { return w != nil && w.ledger != nil }

// Record agrega la fila de la venta.
func (w *LedgerWriter) Record(ctx context.Context, e LedgerEntry) (entity.LedgerRecord, error) {
	rec, err := w.BuildRecord(e)
	if err != nil {
		return rec, err
	}
	if err := w.ledger.Append(ctx, rec); err != nil {
		return rec, fmt.Errorf("agregar fila al libro: %w", err)
	}
	return rec, nil
}

// BuildRecord arma las 15 columnas de la fila.
func (w *LedgerWriter) BuildRecord(e LedgerEntry) (entity.LedgerRecord, error) {
	products := make([]entity.LedgerProduct, len(e.Request.Items))
	for i, it := range e.Request.Items {
		p := entity.LedgerProduct{
			Title:    it.Title,
			Quantity: it.Quantity,
			Price:    it.UnitPrice.StringFixed(2),
			Discount: "0.00",
		}
		if i < len(e.Discounts) {
			p.Discount = e.Discounts[i]
		}
		products[i] = p
	}
	productsJSON, err := json.Marshal(products)
	if err != nil {
		return entity.LedgerRecord{}, fmt.Errorf("serializar productos: %w", err)
	}
	addressJSON, err := json.Marshal(e.Customer.Address)
	if err != nil {
		return entity.LedgerRecord{}, fmt.Errorf("serializar dirección: %w", err)
	}

	status := ledgerStatus(e)
	return entity.LedgerRecord{
		OrderNumber:   e.OrderNumber,
		ProductsJSON:  string(productsJSON),
		Total:         e.Invoice.Total,
		Tax:           e.Invoice.Tax,
		TaxCode:       e.Customer.TaxCode,
		TaxName:       e.Customer.Name,
		InvoiceUUID:   e.Invoice.UUID,
		Serie:         e.Invoice.Serie,
		Authorization: e.Invoice.Authorization,
		Timestamp:     w.now().In(w.loc).Format(LedgerTimeLayout),
		Status:        status,
		PDFURL:        e.Invoice.PDFURL,
		AddressJSON:   string(addressJSON),
		Phone:         e.Customer.Phone,
		Channel:       e.Request.ChannelLabel(w.channel),
	}, nil
}

// ledgerStatus estado de la fila según lo que ocurrió en la tienda, no según lo pedido.
func ledgerStatus(e LedgerEntry) string {
	switch {
	case e.Draft:
		return entity.LedgerStatusDraft
	case e.Payment == PaymentPaid:
		return entity.LedgerStatusPaid
	case e.Payment == PaymentPending:
		return entity.LedgerStatusPending
	default:
		return entity.LedgerStatusUnconfirmed
	}
}
