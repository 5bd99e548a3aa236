package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// Etiquetas de la orden.
const (
	TagNewCustomer      = "CLIENTE_NUEVO"
	TagExistingCustomer = "CLIENTE_EXISTENTE"
	TagCash             = "CONTADO"
	TagCredit           = "CREDITO"

	discountTitle = "Descuento POS"
)

// OrderBuilder crea el borrador de orden en la tienda y le aplica el descuento global.
type OrderBuilder struct {
	platform      CommercePlatform
	termTemplates map[int]string // días de crédito → plantilla de términos de pago
}

// NewOrderBuilder construye el constructor de órdenes.
func NewOrderBuilder(platform CommercePlatform, termTemplates map[int]string) *OrderBuilder {
	if termTemplates == nil {
		termTemplates = map[int]string{}
	}
	return &OrderBuilder{platform: platform, termTemplates: termTemplates}
}

// CreateDraft crea el borrador con líneas, etiquetas y nota de auditoría. Error: ErrOrderCreateFailed.
func (b *OrderBuilder) CreateDraft(ctx context.Context, customer entity.ResolvedCustomer, req entity.SaleRequest) (entity.DraftOrder, error) {
	in := DraftOrderInput{
		CustomerID: customer.ID,
		Items:      req.Items,
		Tags:       orderTags(customer, req),
		Note:       auditNote(customer, req),
	}
	if req.Credit {
		in.PaymentTermsTemplateID = b.termTemplates[req.CreditDays]
	}
	draft, err := b.platform.CreateDraftOrder(ctx, in)
	if err != nil {
		return entity.DraftOrder{}, fmt.Errorf("%w: %v", domain.ErrOrderCreateFailed, err)
	}
	if draft.ID == "" {
		return entity.DraftOrder{}, fmt.Errorf("%w: la tienda no devolvió el borrador", domain.ErrOrderCreateFailed)
	}
	return draft, nil
}

// ApplyDiscount aplica el descuento como monto fijo a nivel de orden y devuelve el borrador actualizado.
func (b *OrderBuilder) ApplyDiscount(ctx context.Context, draft entity.DraftOrder, amount decimal.Decimal) (entity.DraftOrder, error) {
	updated, err := b.platform.ApplyDraftDiscount(ctx, draft.ID, amount.Round(2), discountTitle)
	if err != nil {
		return draft, fmt.Errorf("aplicar descuento Q%s: %w", amount.StringFixed(2), err)
	}
	if updated.Name == "" {
		updated.Name = draft.Name
	}
	return updated, nil
}

// VoidDraft elimina el borrador.
func (b *OrderBuilder) VoidDraft(ctx context.Context, draftID string) error {
	if err := b.platform.DeleteDraftOrder(ctx, draftID); err != nil {
		return fmt.Errorf("eliminar borrador %s: %w", draftID, err)
	}
	return nil
}

func orderTags(customer entity.ResolvedCustomer, req entity.SaleRequest) []string {
	tags := []string{"POS", "FEL"}
	if customer.New {
		tags = append(tags, TagNewCustomer)
	} else {
		tags = append(tags, TagExistingCustomer)
	}
	if req.Credit {
		tags = append(tags, TagCredit)
	} else {
		tags = append(tags, TagCash)
	}
	return tags
}

func auditNote(customer entity.ResolvedCustomer, req entity.SaleRequest) string {
	lines := []string{
		"NIT: " + customer.TaxCode,
		"WhatsApp: " + customer.Phone,
		"Tipo: " + string(req.CustomerMode),
		"Pago: " + strings.TrimSpace(req.PaymentMethod),
		"Descuento: Q" + req.Discount.StringFixed(2),
	}
	if req.Credit {
		lines = append(lines, fmt.Sprintf("Crédito: %d días", req.CreditDays))
	}
	return strings.Join(lines, "\n")
}
