package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxInvoice factura electrónica certificada (FEL). Inmutable salvo la anulación.
type TaxInvoice struct {
	UUID          string
	Serie         string
	Number        string
	Authorization string
	Total         decimal.Decimal
	Tax           decimal.Decimal
	Valid         bool
	IssuedAt      time.Time
	PDFURL        string
}

// DisplayNumber serie y número, ej. "A1B2C3D4-123456789".
func (i TaxInvoice) DisplayNumber() string {
	if i.Serie == "" {
		return i.Number
	}
	return i.Serie + "-" + i.Number
}

// InvoiceLine línea de factura con su parte del descuento global.
type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
}

// InvoiceDraft datos calculados que se envían al certificador.
type InvoiceDraft struct {
	Customer        ResolvedCustomer
	Lines           []InvoiceLine
	Total           decimal.Decimal // con IVA
	TotalWithoutTax decimal.Decimal
	Tax             decimal.Decimal
	IssuedAt        time.Time
}

// Taxpayer contribuyente encontrado por NIT.
type Taxpayer struct {
	TaxCode string  `json:"tax_code"`
	TaxName string  `json:"tax_name"`
	Address Address `json:"address"`
}
