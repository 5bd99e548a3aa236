package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/domain"
)

// Currency moneda de todas las ventas (quetzales).
const Currency = "GTQ"

// CustomerMode indica si la venta es para un cliente existente o uno nuevo.
type CustomerMode string

const (
	CustomerExisting CustomerMode = "existing"
	CustomerNew      CustomerMode = "new"
)

// LineItem línea del carrito. VariantID vacío indica un artículo libre (nombre + precio).
type LineItem struct {
	VariantID string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal // precio con IVA incluido
}

// IsCustom indica si la línea no proviene del catálogo.
func (l LineItem) IsCustom() bool { return strings.TrimSpace(l.VariantID) == "" }

// Subtotal precio unitario × cantidad.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Address dirección fiscal o de entrega.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// IsZero indica si no se capturó ningún dato de dirección.
func (a Address) IsZero() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.Zip == ""
}

// TaxInfo datos fiscales del comprador (NIT y nombre registrado ante SAT).
type TaxInfo struct {
	TaxCode string
	TaxName string
	Address Address
}

// SaleRequest venta enviada por la caja.
type SaleRequest struct {
	CustomerMode  CustomerMode
	CustomerID    string // requerido en modo existing
	Phone         string
	Email         string
	Tax           TaxInfo
	Items         []LineItem
	Discount      decimal.Decimal // descuento global en quetzales
	PaymentMethod string
	Credit        bool
	CreditDays    int
}

// Subtotal suma de las líneas antes del descuento.
func (r SaleRequest) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// LineSubtotals subtotales por línea en el orden del carrito.
func (r SaleRequest) LineSubtotals() []decimal.Decimal {
	out := make([]decimal.Decimal, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Subtotal()
	}
	return out
}

// Validate revisa los campos obligatorios antes de cualquier llamada externa.
func (r SaleRequest) Validate() error {
	switch r.CustomerMode {
	case CustomerExisting:
		if strings.TrimSpace(r.CustomerID) == "" {
			return fmt.Errorf("%w: customer_id es requerido para clientes existentes", domain.ErrInvalidInput)
		}
	case CustomerNew:
		if strings.TrimSpace(r.Phone) == "" {
			return fmt.Errorf("%w: el teléfono es requerido para clientes nuevos", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: customer_mode debe ser existing o new", domain.ErrInvalidInput)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: la venta debe tener al menos un producto", domain.ErrInvalidInput)
	}
	for i, it := range r.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: cantidad inválida en la línea %d", domain.ErrInvalidInput, i+1)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: precio negativo en la línea %d", domain.ErrInvalidInput, i+1)
		}
		if it.IsCustom() && strings.TrimSpace(it.Title) == "" {
			return fmt.Errorf("%w: el artículo libre de la línea %d necesita nombre", domain.ErrInvalidInput, i+1)
		}
	}
	subtotal := r.Subtotal()
	if !subtotal.IsPositive() {
		return fmt.Errorf("%w: el subtotal debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if r.Discount.IsNegative() || r.Discount.GreaterThan(subtotal) {
		return fmt.Errorf("%w: %s sobre subtotal %s", domain.ErrInvalidDiscount, r.Discount.StringFixed(2), subtotal.StringFixed(2))
	}
	if r.Credit && r.CreditDays <= 0 {
		return fmt.Errorf("%w: una venta al crédito necesita plazo en días", domain.ErrInvalidInput)
	}
	return nil
}

// ChannelLabel etiqueta del canal para el libro: "POS - EFECTIVO" o "POS - CRÉDITO 30 DÍAS".
func (r SaleRequest) ChannelLabel(channel string) string {
	if channel == "" {
		channel = "POS"
	}
	if r.Credit {
		return fmt.Sprintf("%s - CRÉDITO %d DÍAS", channel, r.CreditDays)
	}
	method := strings.ToUpper(strings.TrimSpace(r.PaymentMethod))
	if method == "" {
		return channel
	}
	return channel + " - " + method
}
