package sales_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

var errUnavailable = errors.New("servicio no disponible")

// ── Tienda en memoria ────────────────────────────────────────────────────────

type fakePlatform struct {
	mu sync.Mutex

	customers      []entity.Customer
	createdInputs  []sales.NewCustomerInput
	phoneUpdates   []string
	drafts         []sales.DraftOrderInput
	discounts      []decimal.Decimal
	deletedDrafts  []string
	completions    []bool // paymentPending de cada completado
	markedPaid     []string
	fulfillments   []string
	trackingNumber []string

	orderFinancialStatus string // estado devuelto al completar

	findErr, createErr, updatePhoneErr   error
	draftErr, discountErr, deleteErr     error
	completeErr, markPaidErr, fulfillErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{orderFinancialStatus: entity.FinancialStatusPending}
}

func (f *fakePlatform) FindCustomersByPhone(_ context.Context, phone string) ([]entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return append([]entity.Customer(nil), f.customers...), nil
}

func (f *fakePlatform) CreateCustomer(_ context.Context, in sales.NewCustomerInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdInputs = append(f.createdInputs, in)
	id := fmt.Sprintf("gid://shopify/Customer/%d", 100+len(f.createdInputs))
	f.customers = append(f.customers, entity.Customer{ID: id, FirstName: in.FirstName, LastName: in.LastName, Phone: in.Phone})
	return id, nil
}

func (f *fakePlatform) UpdateCustomerPhone(_ context.Context, customerID, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updatePhoneErr != nil {
		return f.updatePhoneErr
	}
	f.phoneUpdates = append(f.phoneUpdates, customerID+"="+phone)
	return nil
}

func (f *fakePlatform) CreateDraftOrder(_ context.Context, in sales.DraftOrderInput) (entity.DraftOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draftErr != nil {
		return entity.DraftOrder{}, f.draftErr
	}
	f.drafts = append(f.drafts, in)
	total := decimal.Zero
	for _, it := range in.Items {
		total = total.Add(it.Subtotal())
	}
	n := len(f.drafts)
	return entity.DraftOrder{ID: fmt.Sprintf("gid://shopify/DraftOrder/%d", n), Name: fmt.Sprintf("#D%d", n), TotalPrice: total}, nil
}

func (f *fakePlatform) ApplyDraftDiscount(_ context.Context, draftID string, amount decimal.Decimal, _ string) (entity.DraftOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discountErr != nil {
		return entity.DraftOrder{}, f.discountErr
	}
	f.discounts = append(f.discounts, amount)
	last := f.drafts[len(f.drafts)-1]
	total := decimal.Zero
	for _, it := range last.Items {
		total = total.Add(it.Subtotal())
	}
	return entity.DraftOrder{ID: draftID, Name: fmt.Sprintf("#D%d", len(f.drafts)), TotalPrice: total.Sub(amount)}, nil
}

func (f *fakePlatform) DeleteDraftOrder(_ context.Context, draftID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedDrafts = append(f.deletedDrafts, draftID)
	return nil
}

func (f *fakePlatform) CompleteDraftOrder(_ context.Context, _ string, paymentPending bool) (entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return entity.Order{}, f.completeErr
	}
	f.completions = append(f.completions, paymentPending)
	n := 1000 + len(f.completions)
	return entity.Order{
		ID:              fmt.Sprintf("gid://shopify/Order/%d", n),
		Name:            fmt.Sprintf("#%d", n),
		FinancialStatus: f.orderFinancialStatus,
	}, nil
}

func (f *fakePlatform) MarkOrderPaid(_ context.Context, orderID string) (entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markPaidErr != nil {
		return entity.Order{}, f.markPaidErr
	}
	f.markedPaid = append(f.markedPaid, orderID)
	return entity.Order{ID: orderID, FinancialStatus: entity.FinancialStatusPaid}, nil
}

func (f *fakePlatform) FulfillmentOrders(_ context.Context, orderID string) ([]entity.FulfillmentOrder, error) {
	return []entity.FulfillmentOrder{
		{ID: orderID + "/fo/1", Status: "OPEN"},
		{ID: orderID + "/fo/2", Status: "CLOSED"},
	}, nil
}

func (f *fakePlatform) CreateFulfillment(_ context.Context, foID string, tracking sales.TrackingInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fulfillErr != nil {
		return f.fulfillErr
	}
	f.fulfillments = append(f.fulfillments, foID)
	f.trackingNumber = append(f.trackingNumber, tracking.Number)
	return nil
}

// ── Certificador en memoria ──────────────────────────────────────────────────

type fakeInvoices struct {
	mu sync.Mutex

	issued    []entity.InvoiceDraft
	cancelled []string
	reasons   []string
	invalid   bool
	issueErr  error
	cancelErr error
	taxpayers []entity.Taxpayer
}

func (f *fakeInvoices) Issue(_ context.Context, draft entity.InvoiceDraft) (entity.TaxInvoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, draft)
	if f.issueErr != nil {
		return entity.TaxInvoice{}, f.issueErr
	}
	if f.invalid {
		return entity.TaxInvoice{}, fmt.Errorf("%w: NIT no válido", domain.ErrInvoiceRejected)
	}
	uuid := fmt.Sprintf("UUID-%d", len(f.issued))
	return entity.TaxInvoice{
		UUID:          uuid,
		Serie:         "A1B2C3D4",
		Number:        "123456789",
		Authorization: "A1B2C3D4-075B-CD15-A1B2-C3D4E5F60718",
		Valid:         true,
		PDFURL:        "https://app.felplex.com/pdf/" + uuid,
	}, nil
}

func (f *fakeInvoices) Cancel(_ context.Context, uuid, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, uuid)
	f.reasons = append(f.reasons, reason)
	return f.cancelErr
}

func (f *fakeInvoices) SearchNIT(_ context.Context, _ string) ([]entity.Taxpayer, error) {
	return f.taxpayers, nil
}

// ── Mensajería en memoria ────────────────────────────────────────────────────

type fakeMessenger struct {
	mu sync.Mutex

	templates   []sales.TemplateMessage
	texts       []string
	templateErr error
	textErr     error
}

func (f *fakeMessenger) SendTemplate(_ context.Context, msg sales.TemplateMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates = append(f.templates, msg)
	return f.templateErr
}

func (f *fakeMessenger) SendText(_ context.Context, _ string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, body)
	return f.textErr
}

// ── Libro en memoria ─────────────────────────────────────────────────────────

type fakeLedger struct {
	mu sync.Mutex

	rows      []entity.LedgerRecord
	updates   int
	appendErr error
	listErr   error
}

func (f *fakeLedger) Append(_ context.Context, rec entity.LedgerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	rec.RowIndex = len(f.rows) + 2
	f.rows = append(f.rows, rec)
	return nil
}

func (f *fakeLedger) List(_ context.Context) ([]entity.LedgerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]entity.LedgerRecord(nil), f.rows...), nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, rowIndex int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	for i := range f.rows {
		if f.rows[i].RowIndex == rowIndex {
			f.rows[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeLedger) status(orderNumber string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.OrderNumber == orderNumber {
			return r.Status
		}
	}
	return ""
}

type fakeOrderLookup map[string]string

func (f fakeOrderLookup) OrderName(_ context.Context, id string) (string, error) {
	if name, ok := f[id]; ok {
		return name, nil
	}
	return "", domain.ErrNotFound
}
