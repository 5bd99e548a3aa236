package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
	"github.com/jhoicas/pos-fel/internal/domain/sale"
)

// InvoiceIssuer arma y certifica la factura electrónica de la venta.
type InvoiceIssuer struct {
	svc InvoiceService
	now func() time.Time
}

// NewInvoiceIssuer construye el emisor. now puede ser nil (usa time.Now).
func NewInvoiceIssuer(svc InvoiceService, now func() time.Time) *InvoiceIssuer {
	if now == nil {
		now = time.Now
	}
	return &InvoiceIssuer{svc: svc, now: now}
}

// Prepare reparte el descuento por línea y calcula los totales con IVA incluido.
func (i *InvoiceIssuer) Prepare(customer entity.ResolvedCustomer, req entity.SaleRequest) (entity.InvoiceDraft, error) {
	discounts, err := sale.Allocate(req.LineSubtotals(), req.Discount)
	if err != nil {
		return entity.InvoiceDraft{}, err
	}
	lines, err := sale.BuildInvoiceLines(req.Items, discounts)
	if err != nil {
		return entity.InvoiceDraft{}, err
	}
	totals := sale.ComputeTotals(req.Subtotal(), req.Discount)
	if err := sale.ReconcileTotals(totals.Total, sale.LinesTotal(lines)); err != nil {
		return entity.InvoiceDraft{}, err
	}
	return entity.InvoiceDraft{
		Customer:        customer,
		Lines:           lines,
		Total:           totals.Total,
		TotalWithoutTax: totals.TotalWithoutTax,
		Tax:             totals.Tax,
		IssuedAt:        i.now(),
	}, nil
}

// Issue certifica la factura. Cualquier fallo se reporta como ErrInvoiceRejected.
func (i *InvoiceIssuer) Issue(ctx context.Context, draft entity.InvoiceDraft) (entity.TaxInvoice, error) {
	inv, err := i.svc.Issue(ctx, draft)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceRejected) {
			return entity.TaxInvoice{}, err
		}
		return entity.TaxInvoice{}, fmt.Errorf("%w: %v", domain.ErrInvoiceRejected, err)
	}
	if !inv.Valid || inv.UUID == "" {
		return entity.TaxInvoice{}, fmt.Errorf("%w: respuesta sin autorización", domain.ErrInvoiceRejected)
	}
	if inv.Total.IsZero() {
		inv.Total = draft.Total
	}
	if inv.Tax.IsZero() {
		inv.Tax = draft.Tax
	}
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = draft.IssuedAt
	}
	return inv, nil
}
