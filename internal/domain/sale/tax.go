package sale

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// IVAFactor precios con IVA del 12% incluido (Guatemala).
var IVAFactor = decimal.RequireFromString("1.12")

// reconcileTolerance diferencia máxima aceptada entre dos totales calculados por caminos distintos.
var reconcileTolerance = decimal.RequireFromString("0.01")

// Totals totales de la venta. Total incluye IVA.
type Totals struct {
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	TotalWithoutTax decimal.Decimal
	Tax             decimal.Decimal
}

// ComputeTotals total = subtotal − descuento; sinIVA = total / 1.12; IVA = total − total/1.12.
// Todos los montos redondeados a 2 decimales; el IVA se calcula sobre el cociente sin redondear.
func ComputeTotals(subtotal, discount decimal.Decimal) Totals {
	total := subtotal.Sub(discount).Round(2)
	without := total.Div(IVAFactor)
	return Totals{
		Subtotal:        subtotal.Round(2),
		Discount:        discount.Round(2),
		Total:           total,
		TotalWithoutTax: without.Round(2),
		Tax:             total.Sub(without).Round(2),
	}
}

// BuildInvoiceLines une las líneas del carrito con su parte del descuento global.
func BuildInvoiceLines(items []entity.LineItem, discounts []decimal.Decimal) ([]entity.InvoiceLine, error) {
	if len(items) != len(discounts) {
		return nil, fmt.Errorf("%w: %d líneas y %d descuentos", domain.ErrInvalidInput, len(items), len(discounts))
	}
	out := make([]entity.InvoiceLine, len(items))
	for i, it := range items {
		desc := it.Title
		if desc == "" {
			desc = "Producto"
		}
		out[i] = entity.InvoiceLine{
			Description: desc,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    discounts[i],
		}
	}
	return out, nil
}

// LinesTotal Σ(precio × cantidad − descuento) de las líneas de factura.
func LinesTotal(lines []entity.InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Sub(l.Discount))
	}
	return total.Round(2)
}

// ReconcileTotals verifica que el total de la tienda (descuento agregado a la orden) y el de
// la factura (descuento repartido por línea) coincidan.
func ReconcileTotals(platformTotal, invoiceTotal decimal.Decimal) error {
	diff := platformTotal.Sub(invoiceTotal).Abs()
	if diff.GreaterThan(reconcileTolerance) {
		return fmt.Errorf("%w: total de la orden %s y total de la factura %s difieren", domain.ErrConflict,
			platformTotal.StringFixed(2), invoiceTotal.StringFixed(2))
	}
	return nil
}
