package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-fel/internal/application/dto"
	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/infrastructure/shopify"
)

// refundPayload campos usados del webhook refunds/create. Los ids llegan como números.
type refundPayload struct {
	ID      json.Number `json:"id"`
	OrderID json.Number `json:"order_id"`
}

// WebhookResponse respuesta al emisor del webhook.
type WebhookResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}

// WebhookHandler recibe webhooks firmados de la tienda (sin JWT).
type WebhookHandler struct {
	refunds *sales.RefundCompensator
	secret  string
	log     zerolog.Logger
}

// NewWebhookHandler construye el handler. secret es la clave compartida del webhook.
func NewWebhookHandler(refunds *sales.RefundCompensator, secret string, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{refunds: refunds, secret: secret, log: log}
}

// RefundCreated godoc
// @Summary      Webhook de reembolso
// @Description  Anula la factura de la orden reembolsada. Con firma válida siempre responde 200.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Shopify-Hmac-Sha256  header  string  true  "firma HMAC-SHA256 en base64"
// @Success      200  {object}  WebhookResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /webhooks/refunds/create [post]
func (h *WebhookHandler) RefundCreated(c *fiber.Ctx) error {
	body := c.Body()
	if !shopify.VerifyWebhook(h.secret, body, c.Get(shopify.WebhookSignatureHeader)) {
		h.log.Warn().Str("ip", c.IP()).Msg("webhook con firma inválida")
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_SIGNATURE", Message: "firma del webhook inválida"})
	}
	var in refundPayload
	if err := json.Unmarshal(body, &in); err != nil || in.OrderID == "" {
		h.log.Warn().Err(err).Msg("webhook de reembolso sin order_id")
		return c.JSON(WebhookResponse{Received: true, Outcome: "ignored"})
	}
	outcome := h.refunds.Handle(c.UserContext(), sales.RefundEvent{
		OrderID:  in.OrderID.String(),
		RefundID: in.ID.String(),
	})
	return c.JSON(WebhookResponse{Received: true, Outcome: string(outcome)})
}
