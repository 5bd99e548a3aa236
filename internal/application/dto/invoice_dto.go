package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// LedgerRowResponse fila del libro de ventas para GET /api/invoices.
type LedgerRowResponse struct {
	Row           int             `json:"row"`
	OrderNumber   string          `json:"order_number"`
	Products      string          `json:"products"` // JSON tal como se guardó en la hoja
	Total         decimal.Decimal `json:"total"`
	Tax           decimal.Decimal `json:"tax"`
	NIT           string          `json:"nit"`
	TaxName       string          `json:"tax_name"`
	UUID          string          `json:"uuid"`
	Serie         string          `json:"serie"`
	Authorization string          `json:"authorization"`
	Timestamp     string          `json:"timestamp"`
	Status        string          `json:"status"`
	PDFURL        string          `json:"pdf_url,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Channel       string          `json:"channel"`
	Cancelled     bool            `json:"cancelled"`
}

// LedgerListResponse listado del libro.
type LedgerListResponse struct {
	Items []LedgerRowResponse `json:"items"`
	Total int                 `json:"total"`
}

// CancelInvoiceRequest body para POST /api/invoices/cancel.
type CancelInvoiceRequest struct {
	UUID   string `json:"uuid"`
	Reason string `json:"reason,omitempty"`
}

// CancelInvoiceResponse resultado de la anulación manual.
type CancelInvoiceResponse struct {
	Success       bool   `json:"success"`
	UUID          string `json:"uuid"`
	LedgerUpdated bool   `json:"ledger_updated"`
}

// TaxpayerResponse contribuyente encontrado por NIT.
type TaxpayerResponse struct {
	NIT     string         `json:"nit"`
	Name    string         `json:"name"`
	Address AddressRequest `json:"address"`
}

// NITSearchResponse salida de GET /api/nit/:nit.
type NITSearchResponse struct {
	Success bool               `json:"success"`
	Results []TaxpayerResponse `json:"results"`
}

// NewLedgerRow convierte una fila del libro.
func NewLedgerRow(r entity.LedgerRecord) LedgerRowResponse {
	return LedgerRowResponse{
		Row:           r.RowIndex,
		OrderNumber:   r.OrderNumber,
		Products:      r.ProductsJSON,
		Total:         r.Total,
		Tax:           r.Tax,
		NIT:           r.TaxCode,
		TaxName:       r.TaxName,
		UUID:          r.InvoiceUUID,
		Serie:         r.Serie,
		Authorization: r.Authorization,
		Timestamp:     r.Timestamp,
		Status:        r.Status,
		PDFURL:        r.PDFURL,
		Phone:         r.Phone,
		Channel:       r.Channel,
		Cancelled:     r.IsCancelled(),
	}
}

// NewTaxpayer convierte un contribuyente del certificador.
func NewTaxpayer(t entity.Taxpayer) TaxpayerResponse {
	return TaxpayerResponse{
		NIT:  t.TaxCode,
		Name: t.TaxName,
		Address: AddressRequest{
			Street:  t.Address.Street,
			City:    t.Address.City,
			State:   t.Address.State,
			Zip:     t.Address.Zip,
			Country: t.Address.Country,
		},
	}
}
