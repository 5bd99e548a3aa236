package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	JWT      JWTConfig
	Auth     AuthConfig
	HTTP     HTTPConfig
	Shopify  ShopifyConfig
	FEL      FELConfig
	WhatsApp WhatsAppConfig
	Sheets   SheetsConfig
	Sale     SaleConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// AuthConfig credenciales del cajero del punto de venta.
// PasswordHash es un hash bcrypt; nunca se guarda la contraseña en claro.
type AuthConfig struct {
	ClerkUser         string
	ClerkPasswordHash string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShopifyConfig acceso a la Admin API GraphQL de la tienda.
type ShopifyConfig struct {
	ShopDomain    string // mitienda.myshopify.com
	AccessToken   string
	APIVersion    string
	WebhookSecret string // secreto de la app para validar X-Shopify-Hmac-Sha256
	// PaymentTermsTemplates relaciona días de crédito con el GID de la plantilla NET de Shopify.
	// Formato en env: "15:gid://shopify/PaymentTermsTemplate/3,30:gid://shopify/PaymentTermsTemplate/4"
	PaymentTermsTemplates map[int]string
}

// FELConfig certificador de factura electrónica (FELplex, Guatemala).
type FELConfig struct {
	APIKey      string
	CompanyID   string // id numérico de la empresa en el certificador
	Environment string // "production" | "development"
	BaseURL     string // opcional: sobrescribe la URL según Environment
	PDFBaseURL  string // prefijo del enlace público al PDF de la factura
	CCEmail     string // copia de cada factura emitida
}

// WhatsAppConfig WhatsApp Cloud API.
type WhatsAppConfig struct {
	BaseURL          string
	PhoneID          string
	AccessToken      string
	TemplateName     string
	TemplateLanguage string
}

// SheetsConfig libro contable en Google Sheets (cuenta de servicio).
type SheetsConfig struct {
	ServiceAccountEmail string
	PrivateKey          string
	SpreadsheetID       string
	RequestsPerSecond   float64
	Burst               int
}

// Enabled indica si hay credenciales suficientes para usar el libro contable.
func (c SheetsConfig) Enabled() bool {
	return c.ServiceAccountEmail != "" && c.PrivateKey != "" && c.SpreadsheetID != ""
}

// SaleConfig parámetros del flujo de venta.
type SaleConfig struct {
	Channel                   string // etiqueta del canal de venta en el libro (POS)
	TimeZone                  string
	VoidDraftOnInvoiceFailure bool // elimina el borrador si la factura es rechazada
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, SHOPIFY_SHOP_DOMAIN, FEL_API_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	templates, err := parseTermTemplates(getString(v, "SHOPIFY_PAYMENT_TERMS_TEMPLATES", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "pos-fel"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 720),
			Issuer:     getString(v, "JWT_ISSUER", "pos-fel"),
		},
		Auth: AuthConfig{
			ClerkUser:         getString(v, "POS_CLERK_USER", "caja"),
			ClerkPasswordHash: getString(v, "POS_CLERK_PASSWORD_HASH", ""),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Shopify: ShopifyConfig{
			ShopDomain:            getString(v, "SHOPIFY_SHOP_DOMAIN", ""),
			AccessToken:           getString(v, "SHOPIFY_ACCESS_TOKEN", ""),
			APIVersion:            getString(v, "SHOPIFY_API_VERSION", "2024-10"),
			WebhookSecret:         getString(v, "SHOPIFY_API_SECRET", ""),
			PaymentTermsTemplates: templates,
		},
		FEL: FELConfig{
			APIKey:      getString(v, "FEL_API_KEY", ""),
			CompanyID:   getString(v, "FEL_COMPANY_ID", ""),
			Environment: getString(v, "FEL_ENVIRONMENT", "development"),
			BaseURL:     getString(v, "FEL_BASE_URL", ""),
			PDFBaseURL:  getString(v, "FEL_PDF_BASE_URL", "https://app.felplex.com/pdf/"),
			CCEmail:     getString(v, "FEL_CC_EMAIL", ""),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:          getString(v, "WHATSAPP_API_URL", "https://graph.facebook.com/v17.0"),
			PhoneID:          getString(v, "WHATSAPP_PHONE_ID", ""),
			AccessToken:      getString(v, "WHATSAPP_ACCESS_TOKEN", ""),
			TemplateName:     getString(v, "WHATSAPP_TEMPLATE_NAME", "purchase_receipt_1"),
			TemplateLanguage: getString(v, "WHATSAPP_TEMPLATE_LANGUAGE", "es"),
		},
		Sheets: SheetsConfig{
			ServiceAccountEmail: getString(v, "GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
			// Las llaves PEM suelen llegar con "\n" escapados en la variable de entorno.
			PrivateKey:        strings.ReplaceAll(getString(v, "GOOGLE_PRIVATE_KEY", ""), `\n`, "\n"),
			SpreadsheetID:     getString(v, "GOOGLE_SHEETS_ID", ""),
			RequestsPerSecond: getFloat(v, "GOOGLE_SHEETS_RPS", 1.0),
			Burst:             getInt(v, "GOOGLE_SHEETS_BURST", 5),
		},
		Sale: SaleConfig{
			Channel:                   getString(v, "SALE_CHANNEL", "POS"),
			TimeZone:                  getString(v, "SALE_TIMEZONE", "America/Guatemala"),
			VoidDraftOnInvoiceFailure: getBool(v, "SALE_VOID_DRAFT_ON_INVOICE_FAILURE", false),
		},
	}

	return cfg, nil
}

// parseTermTemplates interpreta "dias:gid,dias:gid".
func parseTermTemplates(raw string) (map[int]string, error) {
	out := make(map[int]string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		days, gid, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || strings.TrimSpace(gid) == "" {
			return nil, fmt.Errorf("config: SHOPIFY_PAYMENT_TERMS_TEMPLATES inválido: %q", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(days))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: días de crédito inválidos en %q", pair)
		}
		out[n] = strings.TrimSpace(gid)
	}
	return out, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(v.GetString(key), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
