// Package fel cliente REST del certificador FELplex (factura electrónica en línea, SAT Guatemala).
package fel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// Verificar en tiempo de compilación que Client implementa InvoiceService.
var _ sales.InvoiceService = (*Client)(nil)

const (
	BaseURLProduction  = "https://app.felplex.com"
	BaseURLDevelopment = "https://felplex.stage.plex.lat"

	maxResponseBytes = 256 * 1024
)

// Config credenciales de la empresa en el certificador.
type Config struct {
	APIKey      string
	CompanyID   string
	Environment string // "production" usa BaseURLProduction; cualquier otro valor, el entorno de pruebas
	BaseURL     string // sobrescribe la URL según Environment
	PDFBaseURL  string
	CCEmail     string
}

// Client adaptador del certificador. La emisión espera la respuesta de SAT (60 s);
// búsqueda de NIT y anulación usan 15 s.
type Client struct {
	cfg         Config
	baseURL     string
	issueClient *http.Client
	httpClient  *http.Client
}

// NewClient construye el cliente.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = BaseURLDevelopment
		if cfg.Environment == "production" {
			base = BaseURLProduction
		}
	}
	return &Client{
		cfg:         cfg,
		baseURL:     strings.TrimSuffix(base, "/"),
		issueClient: &http.Client{Timeout: 60 * time.Second},
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ── Protocolo FELplex ────────────────────────────────────────────────────────

type invoiceRequest struct {
	Type          string        `json:"type"`
	DatetimeIssue string        `json:"datetime_issue"`
	Items         []invoiceItem `json:"items"`
	Total         json.Number   `json:"total"`
	TotalTax      string        `json:"total_tax"`
	Emails        []emailRef    `json:"emails"`
	EmailsCC      []emailRef    `json:"emails_cc"`
	Phones        []string      `json:"phones"`
	ToCF          int           `json:"to_cf"`
	To            recipient     `json:"to"`
	ExemptPhrase  *string       `json:"exempt_phrase"`
}

type invoiceItem struct {
	Qty                  int         `json:"qty"`
	Type                 string      `json:"type"`
	Price                json.Number `json:"price"`
	Description          string      `json:"description"`
	WithoutIVA           int         `json:"without_iva"`
	Discount             json.Number `json:"discount"`
	IsDiscountPercentage int         `json:"is_discount_percentage"`
	Taxes                itemTaxes   `json:"taxes"`
}

// itemTaxes se envía con todos los campos en null: el certificador calcula el IVA.
type itemTaxes struct {
	Qty           *string `json:"qty"`
	TaxCode       *string `json:"tax_code"`
	FullName      *string `json:"full_name"`
	ShortName     *string `json:"short_name"`
	TaxAmount     *string `json:"tax_amount"`
	TaxableAmount *string `json:"taxable_amount"`
}

type emailRef struct {
	Email string `json:"email"`
}

type recipient struct {
	TaxCodeType string           `json:"tax_code_type"`
	TaxCode     string           `json:"tax_code"`
	TaxName     string           `json:"tax_name"`
	Address     recipientAddress `json:"address"`
}

type recipientAddress struct {
	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Zip     *string `json:"zip"`
	Country string  `json:"country"`
}

type invoiceResponse struct {
	Valid bool   `json:"valid"`
	UUID  string `json:"uuid"`
	SAT   struct {
		Serie         flexString `json:"serie"`
		No            flexString `json:"no"`
		Authorization flexString `json:"authorization"`
	} `json:"sat"`
	Errors json.RawMessage `json:"errors"`
}

// flexString acepta string o número (el certificador envía "no" de ambas formas).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("fel: valor no es string ni número: %s", b)
	}
	*f = flexString(n.String())
	return nil
}

type taxpayerResponse struct {
	TaxCode flexString `json:"tax_code"`
	TaxName string     `json:"tax_name"`
	Address struct {
		Street  string     `json:"street"`
		City    string     `json:"city"`
		State   string     `json:"state"`
		Zip     flexString `json:"zip"`
		Country string     `json:"country"`
	} `json:"address"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// Issue certifica la factura y espera la respuesta de SAT (endpoint invoices/await).
func (c *Client) Issue(ctx context.Context, draft entity.InvoiceDraft) (entity.TaxInvoice, error) {
	payload := c.buildPayload(draft)
	body, err := json.Marshal(payload)
	if err != nil {
		return entity.TaxInvoice{}, fmt.Errorf("fel: serializar factura: %w", err)
	}
	raw, status, err := c.send(ctx, c.issueClient, http.MethodPost, c.entityURL("invoices", "await"), body)
	if err != nil {
		return entity.TaxInvoice{}, err
	}
	if status < 200 || status >= 300 {
		return entity.TaxInvoice{}, fmt.Errorf("%w: HTTP %d: %s", domain.ErrInvoiceRejected, status, truncate(raw, 300))
	}

	var res invoiceResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return entity.TaxInvoice{}, fmt.Errorf("fel: respuesta no es JSON: %w", err)
	}
	if !res.Valid {
		return entity.TaxInvoice{}, fmt.Errorf("%w: %s", domain.ErrInvoiceRejected, describeErrors(res.Errors))
	}
	return entity.TaxInvoice{
		UUID:          res.UUID,
		Serie:         string(res.SAT.Serie),
		Number:        string(res.SAT.No),
		Authorization: string(res.SAT.Authorization),
		Total:         draft.Total,
		Tax:           draft.Tax,
		Valid:         true,
		IssuedAt:      draft.IssuedAt,
		PDFURL:        c.PDFURL(res.UUID),
	}, nil
}

// Cancel anula una factura certificada.
func (c *Client) Cancel(ctx context.Context, uuid, reason string) error {
	if strings.TrimSpace(uuid) == "" {
		return fmt.Errorf("%w: UUID de factura es requerido", domain.ErrInvalidInput)
	}
	body, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return fmt.Errorf("fel: serializar anulación: %w", err)
	}
	raw, status, err := c.send(ctx, c.httpClient, http.MethodDelete, c.entityURL("invoices", uuid), body)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: factura %s", domain.ErrNotFound, uuid)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("fel: anular %s: HTTP %d: %s", uuid, status, truncate(raw, 300))
	}
	return nil
}

// SearchNIT consulta el contribuyente. 404 significa que no existe y devuelve lista vacía.
func (c *Client) SearchNIT(ctx context.Context, nit string) ([]entity.Taxpayer, error) {
	raw, status, err := c.send(ctx, c.httpClient, http.MethodGet, c.entityURL("find", "NIT", nit), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []entity.Taxpayer{}, nil
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("fel: buscar NIT: HTTP %d: %s", status, truncate(raw, 300))
	}

	var list []taxpayerResponse
	if err := json.Unmarshal(raw, &list); err != nil {
		// Algunas respuestas traen un solo objeto en lugar de arreglo.
		var one taxpayerResponse
		if err2 := json.Unmarshal(raw, &one); err2 != nil {
			return nil, fmt.Errorf("fel: respuesta de NIT no es JSON: %w", err)
		}
		list = []taxpayerResponse{one}
	}
	out := make([]entity.Taxpayer, 0, len(list))
	for _, t := range list {
		if t.TaxCode == "" && t.TaxName == "" {
			continue
		}
		out = append(out, entity.Taxpayer{
			TaxCode: string(t.TaxCode),
			TaxName: t.TaxName,
			Address: entity.Address{
				Street:  t.Address.Street,
				City:    t.Address.City,
				State:   t.Address.State,
				Zip:     string(t.Address.Zip),
				Country: t.Address.Country,
			},
		})
	}
	return out, nil
}

// PDFURL enlace público al PDF de la factura.
func (c *Client) PDFURL(uuid string) string {
	if uuid == "" {
		return ""
	}
	base := c.cfg.PDFBaseURL
	if base == "" {
		base = BaseURLProduction + "/pdf/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + uuid
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (c *Client) buildPayload(d entity.InvoiceDraft) invoiceRequest {
	items := make([]invoiceItem, len(d.Lines))
	for i, l := range d.Lines {
		items[i] = invoiceItem{
			Qty:         l.Quantity,
			Type:        "B",
			Price:       json.Number(l.UnitPrice.StringFixed(2)),
			Description: l.Description,
			Discount:    json.Number(l.Discount.StringFixed(2)),
		}
	}

	emails := []emailRef{}
	if d.Customer.Email != "" {
		emails = append(emails, emailRef{Email: d.Customer.Email})
	}
	cc := []emailRef{}
	if c.cfg.CCEmail != "" {
		cc = append(cc, emailRef{Email: c.cfg.CCEmail})
	}
	toCF := 0
	if d.Customer.IsFinalConsumer() {
		toCF = 1
	}
	addr := d.Customer.Address
	country := addr.Country
	if country == "" {
		country = "GT"
	}

	return invoiceRequest{
		Type:          "FACT",
		DatetimeIssue: d.IssuedAt.Format("2006-01-02T15:04:05"),
		Items:         items,
		Total:         json.Number(d.Total.StringFixed(2)),
		TotalTax:      d.Tax.StringFixed(2),
		Emails:        emails,
		EmailsCC:      cc,
		Phones:        []string{},
		ToCF:          toCF,
		To: recipient{
			TaxCodeType: "NIT",
			TaxCode:     d.Customer.TaxCode,
			TaxName:     d.Customer.Name,
			Address: recipientAddress{
				Street:  nullable(addr.Street),
				City:    nullable(addr.City),
				State:   nullable(addr.State),
				Zip:     nullable(addr.Zip),
				Country: country,
			},
		},
	}
}

func (c *Client) entityURL(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s/api/entity/%s/%s", c.baseURL, url.PathEscape(c.cfg.CompanyID), strings.Join(escaped, "/"))
}

// send ejecuta la llamada y devuelve cuerpo y status. Solo los fallos de red son error.
func (c *Client) send(ctx context.Context, hc *http.Client, method, endpoint string, body []byte) ([]byte, int, error) {
	if c.cfg.APIKey == "" {
		return nil, 0, fmt.Errorf("fel: FEL_API_KEY no configurado")
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("fel: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Authorization", c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("fel: timeout o cancelación: %w", ctx.Err())
		}
		return nil, 0, fmt.Errorf("fel: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("fel: leer respuesta: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// describeErrors aplana el campo errors (arreglo de strings u objeto) en un texto.
func describeErrors(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "respuesta valid:false sin detalle"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.Join(list, ", ")
	}
	return truncate(raw, 300)
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
