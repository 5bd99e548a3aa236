package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// SaleItemRequest línea del carrito. Sin variant_id se trata como artículo libre (title + unit_price).
type SaleItemRequest struct {
	VariantID string          `json:"variant_id,omitempty"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// AddressRequest dirección fiscal opcional.
type AddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerMode  string            `json:"customer_mode"` // existing | new
	CustomerID    string            `json:"customer_id,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Email         string            `json:"email,omitempty"`
	NIT           string            `json:"nit"`
	TaxName       string            `json:"tax_name"`
	Address       *AddressRequest   `json:"address,omitempty"`
	Items         []SaleItemRequest `json:"items"`
	Discount      decimal.Decimal   `json:"discount"`
	PaymentMethod string            `json:"payment_method"`
	Credit        bool              `json:"credit"`
	CreditDays    int               `json:"credit_days,omitempty"`
}

// ToEntity convierte el body en la venta de dominio.
func (r CreateSaleRequest) ToEntity() entity.SaleRequest {
	items := make([]entity.LineItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = entity.LineItem{
			VariantID: it.VariantID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	var addr entity.Address
	if r.Address != nil {
		addr = entity.Address{
			Street:  r.Address.Street,
			City:    r.Address.City,
			State:   r.Address.State,
			Zip:     r.Address.Zip,
			Country: r.Address.Country,
		}
	}
	return entity.SaleRequest{
		CustomerMode:  entity.CustomerMode(r.CustomerMode),
		CustomerID:    r.CustomerID,
		Phone:         r.Phone,
		Email:         r.Email,
		Tax:           entity.TaxInfo{TaxCode: r.NIT, TaxName: r.TaxName, Address: addr},
		Items:         items,
		Discount:      r.Discount,
		PaymentMethod: r.PaymentMethod,
		Credit:        r.Credit,
		CreditDays:    r.CreditDays,
	}
}

// InvoiceSummary factura certificada en la respuesta de venta.
type InvoiceSummary struct {
	UUID          string          `json:"uuid"`
	Serie         string          `json:"serie"`
	Number        string          `json:"number"`
	Authorization string          `json:"authorization"`
	Total         decimal.Decimal `json:"total"`
	Tax           decimal.Decimal `json:"tax"`
	PDFURL        string          `json:"pdf_url,omitempty"`
}

// WarningResponse paso no fatal que falló.
type WarningResponse struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// SaleResponse salida de POST /api/sales.
type SaleResponse struct {
	SaleID        string            `json:"sale_id"`
	OrderID       string            `json:"order_id"`
	OrderNumber   string            `json:"order_number"`
	Total         decimal.Decimal   `json:"total"`
	Invoice       InvoiceSummary    `json:"invoice"`
	PaymentStatus string            `json:"payment_status"`
	Fulfilled     bool              `json:"fulfilled"`
	Notification  string            `json:"notification,omitempty"`
	LedgerWritten bool              `json:"ledger_written"`
	Warnings      []WarningResponse `json:"warnings"`
}

// NewInvoiceSummary resumen público de la factura.
func NewInvoiceSummary(inv entity.TaxInvoice) InvoiceSummary {
	return InvoiceSummary{
		UUID:          inv.UUID,
		Serie:         inv.Serie,
		Number:        inv.Number,
		Authorization: inv.Authorization,
		Total:         inv.Total,
		Tax:           inv.Tax,
		PDFURL:        inv.PDFURL,
	}
}
