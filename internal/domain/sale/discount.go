// Package sale contiene la aritmética de la venta (descuento, IVA) y el ciclo de vida
// de pago y entrega de la orden. No depende de servicios externos.
package sale

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/domain"
)

var cent = decimal.New(1, -2)

// Allocate reparte el descuento global entre las líneas en proporción a su subtotal:
// descuentoLinea = subtotalLinea × (descuento / subtotal), a 2 decimales.
// Cada línea se trunca al centavo y los centavos que faltan van a las líneas con mayor
// residuo (empate: mayor subtotal), así la suma es exactamente el descuento y ninguna línea es negativa.
func Allocate(lines []decimal.Decimal, discount decimal.Decimal) ([]decimal.Decimal, error) {
	subtotal := decimal.Zero
	for i, l := range lines {
		if l.IsNegative() {
			return nil, fmt.Errorf("%w: subtotal negativo en la línea %d", domain.ErrInvalidInput, i+1)
		}
		subtotal = subtotal.Add(l)
	}
	if !subtotal.IsPositive() {
		return nil, fmt.Errorf("%w: el subtotal debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return nil, fmt.Errorf("%w: %s sobre subtotal %s", domain.ErrInvalidDiscount, discount.String(), subtotal.String())
	}

	out := make([]decimal.Decimal, len(lines))
	if discount.IsZero() {
		for i := range out {
			out[i] = decimal.Zero
		}
		return out, nil
	}

	remainders := make([]decimal.Decimal, len(lines))
	allocated := decimal.Zero
	for i, l := range lines {
		exact := l.Mul(discount).Div(subtotal)
		out[i] = exact.Truncate(2)
		remainders[i] = exact.Sub(out[i])
		allocated = allocated.Add(out[i])
	}

	missing := discount.Round(2).Sub(allocated).Div(cent).IntPart()
	if missing <= 0 {
		return out, nil
	}
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := remainders[order[a]], remainders[order[b]]
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return lines[order[a]].GreaterThan(lines[order[b]])
	})
	for k := int64(0); k < missing && int(k) < len(order); k++ {
		i := order[k]
		out[i] = out[i].Add(cent)
	}
	return out, nil
}
