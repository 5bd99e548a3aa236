// Package whatsapp cliente de la WhatsApp Cloud API para enviar facturas al cliente.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain"
)

// Verificar en tiempo de compilación que Client implementa Messenger.
var _ sales.Messenger = (*Client)(nil)

// Config número emisor y plantilla aprobada.
type Config struct {
	BaseURL          string
	PhoneID          string
	AccessToken      string
	TemplateName     string
	TemplateLanguage string
}

// Client adaptador sobre net/http.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient construye el cliente con timeout de 15 s.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.TemplateLanguage == "" {
		cfg.TemplateLanguage = "es"
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// ── Protocolo Cloud API ──────────────────────────────────────────────────────

type message struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Template         *template `json:"template,omitempty"`
	Text             *text     `json:"text,omitempty"`
}

type template struct {
	Name       string      `json:"name"`
	Language   language    `json:"language"`
	Components []component `json:"components"`
}

type language struct {
	Code string `json:"code"`
}

type component struct {
	Type       string      `json:"type"`
	Parameters []parameter `json:"parameters"`
}

type parameter struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Document *document `json:"document,omitempty"`
}

type document struct {
	Link     string `json:"link"`
	Filename string `json:"filename"`
}

type text struct {
	Body string `json:"body"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// SendTemplate envía la plantilla con el PDF en la cabecera. HTTP 400 devuelve ErrTemplateRejected.
func (c *Client) SendTemplate(ctx context.Context, msg sales.TemplateMessage) error {
	params := make([]parameter, len(msg.BodyParams))
	for i, p := range msg.BodyParams {
		params[i] = parameter{Type: "text", Text: p}
	}
	return c.post(ctx, message{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "template",
		Template: &template{
			Name:     c.cfg.TemplateName,
			Language: language{Code: c.cfg.TemplateLanguage},
			Components: []component{
				{
					Type: "header",
					Parameters: []parameter{{
						Type:     "document",
						Document: &document{Link: msg.DocumentURL, Filename: msg.DocumentFilename},
					}},
				},
				{Type: "body", Parameters: params},
			},
		},
	})
}

// SendText envía un mensaje de texto libre.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	return c.post(ctx, message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &text{Body: body},
	})
}

func (c *Client) post(ctx context.Context, m message) error {
	if c.cfg.AccessToken == "" || c.cfg.PhoneID == "" {
		return fmt.Errorf("whatsapp: WHATSAPP_PHONE_ID o WHATSAPP_ACCESS_TOKEN no configurado")
	}
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("whatsapp: serializar mensaje: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("whatsapp: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("whatsapp: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 32*1024))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusBadRequest && m.Type == "template":
		return fmt.Errorf("%w: %s", domain.ErrTemplateRejected, apiErrorMessage(raw))
	default:
		return fmt.Errorf("whatsapp: HTTP %d: %s", resp.StatusCode, apiErrorMessage(raw))
	}
}

// apiErrorMessage extrae error.message de la respuesta de Graph API.
func apiErrorMessage(raw []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return fmt.Sprintf("%s (code %d)", e.Error.Message, e.Error.Code)
	}
	if len(raw) > 300 {
		raw = raw[:300]
	}
	return string(raw)
}
