package entity

import "github.com/shopspring/decimal"

// Estados financieros de la orden en la tienda.
const (
	FinancialStatusPaid    = "PAID"
	FinancialStatusPending = "PENDING"
)

// DraftOrder borrador de orden. Name (#D12) no es el número que ve el cliente.
type DraftOrder struct {
	ID         string
	Name       string
	TotalPrice decimal.Decimal
}

// Order orden real creada al completar el borrador.
type Order struct {
	ID              string
	Name            string // número visible para el cliente (#1024)
	FinancialStatus string
	TotalPrice      decimal.Decimal
}

// IsPaid indica si la tienda ya registró el pago.
func (o Order) IsPaid() bool { return o.FinancialStatus == FinancialStatusPaid }

// FulfillmentOrder orden de preparación abierta para una orden.
type FulfillmentOrder struct {
	ID     string
	Status string
}
