package sale

import (
	"fmt"

	"github.com/jhoicas/pos-fel/internal/domain"
)

// OrderState estado de pago y entrega de la orden.
type OrderState string

const (
	StateDraft          OrderState = "DRAFT"
	StateCompleted      OrderState = "COMPLETED"
	StatePaid           OrderState = "PAID"
	StatePaymentPending OrderState = "PAYMENT_PENDING"
	StateFulfilled      OrderState = "FULFILLED"
)

// OrderLifecycle máquina de estados Draft → Completed → {Paid | PaymentPending} → Fulfilled.
// Una venta al crédito nunca pasa por Paid. Si el cobro falla la orden se entrega desde Completed.
type OrderLifecycle struct {
	credit bool
	state  OrderState
	paid   bool
}

// NewOrderLifecycle inicia en Draft.
func NewOrderLifecycle(credit bool) *OrderLifecycle {
	return &OrderLifecycle{credit: credit, state: StateDraft}
}

// State estado actual.
func (l *OrderLifecycle) State() OrderState { return l.state }

// Paid indica si la orden pasó por Paid.
func (l *OrderLifecycle) Paid() bool { return l.paid }

// PaymentPendingOnCompletion indica si el borrador debe completarse con pago pendiente.
func (l *OrderLifecycle) PaymentPendingOnCompletion() bool { return l.credit }

// Complete Draft → Completed.
func (l *OrderLifecycle) Complete() error {
	return l.transition(StateDraft, StateCompleted)
}

// MarkPaid Completed → Paid. Rechazado para ventas al crédito.
func (l *OrderLifecycle) MarkPaid() error {
	if l.credit {
		return fmt.Errorf("%w: una venta al crédito no se marca como pagada", domain.ErrConflict)
	}
	if err := l.transition(StateCompleted, StatePaid); err != nil {
		return err
	}
	l.paid = true
	return nil
}

// MarkPaymentPending Completed → PaymentPending. Solo para ventas al crédito.
func (l *OrderLifecycle) MarkPaymentPending() error {
	if !l.credit {
		return fmt.Errorf("%w: una venta de contado debe marcarse como pagada", domain.ErrConflict)
	}
	return l.transition(StateCompleted, StatePaymentPending)
}

// Fulfill {Completed | Paid | PaymentPending} → Fulfilled. La entrega no depende del cobro.
func (l *OrderLifecycle) Fulfill() error {
	switch l.state {
	case StateCompleted, StatePaid, StatePaymentPending:
	default:
		return fmt.Errorf("%w: no se puede entregar una orden en estado %s", domain.ErrConflict, l.state)
	}
	l.state = StateFulfilled
	return nil
}

func (l *OrderLifecycle) transition(from, to OrderState) error {
	if l.state != from {
		return fmt.Errorf("%w: transición %s → %s desde %s", domain.ErrConflict, from, to, l.state)
	}
	l.state = to
	return nil
}
