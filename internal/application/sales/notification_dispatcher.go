package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// Forma en que se entregó la factura al cliente.
const (
	DeliveryTemplate = "template"
	DeliveryText     = "text"
)

// Notification datos de la factura a enviar. OrderNumber es el número de la orden completada.
type Notification struct {
	Phone        string
	CustomerName string
	OrderNumber  string
	Invoice      entity.TaxInvoice
}

// NotificationDispatcher envía el PDF de la factura por WhatsApp con un mensaje de texto de respaldo.
type NotificationDispatcher struct {
	messenger Messenger
}

// NewNotificationDispatcher construye el despachador.
func NewNotificationDispatcher(messenger Messenger) *NotificationDispatcher {
	return &NotificationDispatcher{messenger: messenger}
}

// Dispatch intenta la plantilla; si el proveedor la rechaza, envía una sola vez el texto plano.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, n Notification) (string, error) {
	to := FormatPhone(n.Phone)
	if to == "" {
		return "", fmt.Errorf("%w: cliente sin teléfono", domain.ErrInvalidInput)
	}
	name := n.CustomerName
	if strings.TrimSpace(name) == "" {
		name = "Cliente"
	}
	orderNumber := n.OrderNumber
	if orderNumber == "" {
		orderNumber = "N/A"
	}

	err := d.messenger.SendTemplate(ctx, TemplateMessage{
		To:               to,
		DocumentURL:      n.Invoice.PDFURL,
		DocumentFilename: fmt.Sprintf("Factura_%s.pdf", n.Invoice.Number),
		BodyParams:       []string{name, name, orderNumber},
	})
	if err == nil {
		return DeliveryTemplate, nil
	}
	if !errors.Is(err, domain.ErrTemplateRejected) {
		return "", fmt.Errorf("enviar plantilla: %w", err)
	}
	if err := d.messenger.SendText(ctx, to, fallbackText(n.Invoice)); err != nil {
		return "", fmt.Errorf("enviar texto de respaldo: %w", err)
	}
	return DeliveryText, nil
}

// FormatPhone quita "+" y espacios, como lo espera la API de WhatsApp.
func FormatPhone(phone string) string {
	return strings.NewReplacer("+", "", " ", "").Replace(strings.TrimSpace(phone))
}

func fallbackText(inv entity.TaxInvoice) string {
	var b strings.Builder
	b.WriteString("🧾 *FACTURA ELECTRÓNICA*\n\n")
	fmt.Fprintf(&b, "*Serie:* %s\n", inv.Serie)
	fmt.Fprintf(&b, "*Número:* %s\n", inv.Number)
	fmt.Fprintf(&b, "*Autorización SAT:* %s\n", inv.Authorization)
	fmt.Fprintf(&b, "*Total:* Q%s\n\n", inv.Total.StringFixed(2))
	fmt.Fprintf(&b, "📄 *Descarga tu factura aquí:*\n%s\n\n", inv.PDFURL)
	b.WriteString("_Gracias por tu compra_")
	return b.String()
}
