package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/pos-fel/internal/domain/entity"
	"github.com/jhoicas/pos-fel/internal/domain/sale"
)

// trackingCompany transportista registrado en las entregas de mostrador.
const trackingCompany = "Entrega en tienda"

// PaymentFulfillment lleva la orden por Completed → {Paid | PaymentPending} → Fulfilled
// usando OrderLifecycle para impedir que una venta al crédito se marque pagada.
type PaymentFulfillment struct {
	platform CommercePlatform
}

// NewPaymentFulfillment construye la máquina de pago y entrega.
func NewPaymentFulfillment(platform CommercePlatform) *PaymentFulfillment {
	return &PaymentFulfillment{platform: platform}
}

// Complete convierte el borrador en orden; al crédito se completa con pago pendiente.
func (p *PaymentFulfillment) Complete(ctx context.Context, lc *sale.OrderLifecycle, draftID string) (entity.Order, error) {
	order, err := p.platform.CompleteDraftOrder(ctx, draftID, lc.PaymentPendingOnCompletion())
	if err != nil {
		return entity.Order{}, fmt.Errorf("completar borrador: %w", err)
	}
	if order.ID == "" || order.Name == "" {
		return entity.Order{}, errors.New("completar borrador: la tienda no devolvió la orden")
	}
	if err := lc.Complete(); err != nil {
		return entity.Order{}, err
	}
	return order, nil
}

// Settle contado: marca pagada (si la tienda aún no lo hizo). Crédito: queda con pago pendiente.
func (p *PaymentFulfillment) Settle(ctx context.Context, lc *sale.OrderLifecycle, order entity.Order) (entity.Order, error) {
	if lc.PaymentPendingOnCompletion() {
		if err := lc.MarkPaymentPending(); err != nil {
			return order, err
		}
		return order, nil
	}
	if !order.IsPaid() {
		paid, err := p.platform.MarkOrderPaid(ctx, order.ID)
		if err != nil {
			return order, fmt.Errorf("marcar orden pagada: %w", err)
		}
		if paid.Name == "" {
			paid.Name = order.Name
		}
		order = paid
	}
	if err := lc.MarkPaid(); err != nil {
		return order, err
	}
	return order, nil
}

// Fulfill entrega todas las órdenes de preparación abiertas. Se intenta en ambas ramas de pago.
func (p *PaymentFulfillment) Fulfill(ctx context.Context, lc *sale.OrderLifecycle, order entity.Order) error {
	fos, err := p.platform.FulfillmentOrders(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("consultar órdenes de preparación: %w", err)
	}
	tracking := TrackingInfo{Company: trackingCompany, Number: order.Name}
	var errs []error
	for _, fo := range fos {
		if !isOpenFulfillment(fo.Status) {
			continue
		}
		if err := p.platform.CreateFulfillment(ctx, fo.ID, tracking); err != nil {
			errs = append(errs, fmt.Errorf("entregar %s: %w", fo.ID, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return lc.Fulfill()
}

func isOpenFulfillment(status string) bool {
	switch strings.ToUpper(status) {
	case "OPEN", "IN_PROGRESS", "SCHEDULED", "":
		return true
	default:
		return false
	}
}
