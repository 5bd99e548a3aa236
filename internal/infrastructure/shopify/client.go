// Package shopify adaptador de la Admin API GraphQL de Shopify.
package shopify

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
)

// Verificar en tiempo de compilación que Client implementa los puertos de la venta.
var (
	_ sales.CommercePlatform = (*Client)(nil)
	_ sales.OrderLookup      = (*Client)(nil)
)

const maxResponseBytes = 1 << 20

// Config acceso a la tienda. Endpoint sobrescribe la URL derivada del dominio (pruebas).
type Config struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	Endpoint    string
	Timeout     time.Duration
}

// Client cliente GraphQL sobre net/http.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient construye el cliente. Timeout por defecto 20 s.
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", strings.TrimSuffix(cfg.ShopDomain, "/"), cfg.APIVersion)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Protocolo GraphQL ────────────────────────────────────────────────────────

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// userErrorsErr convierte userErrors no vacíos en error.
func userErrorsErr(op string, errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Field) > 0 {
			msgs = append(msgs, strings.Join(e.Field, ".")+": "+e.Message)
			continue
		}
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("shopify: %s: %s", op, strings.Join(msgs, "; "))
}

// do ejecuta la operación y decodifica data en out.
func (c *Client) do(ctx context.Context, op, query string, vars map[string]interface{}, out interface{}) error {
	if c.token == "" {
		return fmt.Errorf("shopify: SHOPIFY_ACCESS_TOKEN no configurado")
	}
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("shopify: %s: serializar request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("shopify: %s: crear HTTP request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("shopify: %s: timeout o cancelación: %w", op, ctx.Err())
		}
		return fmt.Errorf("shopify: %s: llamada HTTP fallida: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("shopify: %s: leer respuesta: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shopify: %s: HTTP %d: %s", op, resp.StatusCode, truncate(raw, 300))
	}

	var gql graphQLResponse
	if err := json.Unmarshal(raw, &gql); err != nil {
		return fmt.Errorf("shopify: %s: respuesta no es JSON: %w", op, err)
	}
	if len(gql.Errors) > 0 {
		return fmt.Errorf("shopify: %s: %s", op, gql.Errors[0].Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(gql.Data, out); err != nil {
		return fmt.Errorf("shopify: %s: decodificar data: %w", op, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// OrderGID acepta el id numérico del webhook o un GID completo.
func OrderGID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return "gid://shopify/Order/" + id
}
