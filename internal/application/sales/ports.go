package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// CommercePlatform operaciones de la tienda (Shopify Admin API) que usa la venta.
// Toda mutación con userErrors no vacío devuelve error.
type CommercePlatform interface {
	FindCustomersByPhone(ctx context.Context, phone string) ([]entity.Customer, error)
	CreateCustomer(ctx context.Context, in NewCustomerInput) (string, error)
	UpdateCustomerPhone(ctx context.Context, customerID, phone string) error

	CreateDraftOrder(ctx context.Context, in DraftOrderInput) (entity.DraftOrder, error)
	ApplyDraftDiscount(ctx context.Context, draftID string, amount decimal.Decimal, title string) (entity.DraftOrder, error)
	DeleteDraftOrder(ctx context.Context, draftID string) error
	CompleteDraftOrder(ctx context.Context, draftID string, paymentPending bool) (entity.Order, error)

	MarkOrderPaid(ctx context.Context, orderID string) (entity.Order, error)
	FulfillmentOrders(ctx context.Context, orderID string) ([]entity.FulfillmentOrder, error)
	CreateFulfillment(ctx context.Context, fulfillmentOrderID string, tracking TrackingInfo) error
}

// OrderLookup resuelve el número visible (#1024) de una orden por su id.
type OrderLookup interface {
	OrderName(ctx context.Context, orderID string) (string, error)
}

// InvoiceService certificador de factura electrónica (FEL).
type InvoiceService interface {
	// Issue certifica la factura. Una respuesta valid:false devuelve domain.ErrInvoiceRejected.
	Issue(ctx context.Context, draft entity.InvoiceDraft) (entity.TaxInvoice, error)
	Cancel(ctx context.Context, uuid, reason string) error
	SearchNIT(ctx context.Context, nit string) ([]entity.Taxpayer, error)
}

// Messenger canal de mensajería con el cliente (WhatsApp).
type Messenger interface {
	// SendTemplate devuelve domain.ErrTemplateRejected si el proveedor rechaza la plantilla.
	SendTemplate(ctx context.Context, msg TemplateMessage) error
	SendText(ctx context.Context, to, body string) error
}

// Ledger libro contable de ventas (Google Sheets).
type Ledger interface {
	Append(ctx context.Context, rec entity.LedgerRecord) error
	List(ctx context.Context) ([]entity.LedgerRecord, error)
	UpdateStatus(ctx context.Context, rowIndex int, status string) error
}

// NewCustomerInput datos para registrar un cliente nuevo.
type NewCustomerInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	TaxCode   string
	Tags      []string
	Address   *entity.Address
}

// DraftOrderInput borrador de orden.
type DraftOrderInput struct {
	CustomerID             string
	Items                  []entity.LineItem
	Tags                   []string
	Note                   string
	PaymentTermsTemplateID string // solo ventas al crédito
}

// TrackingInfo datos de seguimiento de la entrega.
type TrackingInfo struct {
	Company string
	Number  string
	URL     string
}

// TemplateMessage mensaje de plantilla con documento adjunto.
type TemplateMessage struct {
	To               string
	DocumentURL      string
	DocumentFilename string
	BodyParams       []string
}
