package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-fel/internal/application/auth"
	"github.com/jhoicas/pos-fel/internal/application/dto"
	"github.com/jhoicas/pos-fel/internal/application/invoices"
	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/infrastructure/fel"
	"github.com/jhoicas/pos-fel/internal/infrastructure/sheets"
	"github.com/jhoicas/pos-fel/internal/infrastructure/shopify"
	"github.com/jhoicas/pos-fel/internal/infrastructure/whatsapp"
	httpRouter "github.com/jhoicas/pos-fel/internal/interfaces/http"
	"github.com/jhoicas/pos-fel/pkg/config"
	"github.com/jhoicas/pos-fel/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("shop", cfg.Shopify.ShopDomain).
		Msg("iniciando aplicación")

	ctx := context.Background()

	loc, err := time.LoadLocation(cfg.Sale.TimeZone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Sale.TimeZone).Msg("zona horaria inválida")
	}

	shop := shopify.NewClient(shopify.Config{
		ShopDomain:  cfg.Shopify.ShopDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
	})
	felClient := fel.NewClient(fel.Config{
		APIKey:      cfg.FEL.APIKey,
		CompanyID:   cfg.FEL.CompanyID,
		Environment: cfg.FEL.Environment,
		BaseURL:     cfg.FEL.BaseURL,
		PDFBaseURL:  cfg.FEL.PDFBaseURL,
		CCEmail:     cfg.FEL.CCEmail,
	})
	messenger := whatsapp.NewClient(whatsapp.Config{
		BaseURL:          cfg.WhatsApp.BaseURL,
		PhoneID:          cfg.WhatsApp.PhoneID,
		AccessToken:      cfg.WhatsApp.AccessToken,
		TemplateName:     cfg.WhatsApp.TemplateName,
		TemplateLanguage: cfg.WhatsApp.TemplateLanguage,
	})

	// Sin credenciales de Google el libro queda deshabilitado: las ventas siguen y reportan la advertencia.
	var ledger sales.Ledger
	if cfg.Sheets.Enabled() {
		sheetLedger, err := sheets.NewLedger(ctx, sheets.Config{
			ServiceAccountEmail: cfg.Sheets.ServiceAccountEmail,
			PrivateKey:          cfg.Sheets.PrivateKey,
			SpreadsheetID:       cfg.Sheets.SpreadsheetID,
			RequestsPerSecond:   cfg.Sheets.RequestsPerSecond,
			Burst:               cfg.Sheets.Burst,
		})
		if err != nil {
			log.Error().Err(err).Msg("libro contable no disponible")
		} else {
			ledger = sheetLedger
		}
	} else {
		log.Warn().Msg("Google Sheets no configurado: las ventas no se anotarán en el libro")
	}
	if cfg.Shopify.WebhookSecret == "" {
		log.Warn().Msg("SHOPIFY_API_SECRET vacío: se rechazarán todos los webhooks")
	}

	customerResolver := sales.NewCustomerResolver(shop)
	saleUC := sales.NewProcessSaleUseCase(
		customerResolver,
		sales.NewOrderBuilder(shop, cfg.Shopify.PaymentTermsTemplates),
		sales.NewInvoiceIssuer(felClient, time.Now),
		sales.NewPaymentFulfillment(shop),
		sales.NewNotificationDispatcher(messenger),
		sales.NewLedgerWriter(ledger, cfg.Sale.Channel, loc, time.Now),
		sales.SagaConfig{VoidDraftOnInvoiceFailure: cfg.Sale.VoidDraftOnInvoiceFailure},
		log.Component("sale"),
	)
	refunds := sales.NewRefundCompensator(ledger, felClient, shop, log.Component("refund"))
	invoiceUC := invoices.NewInvoiceUseCase(ledger, felClient, log.Component("invoices"))
	authUC := auth.NewAuthUseCase(
		auth.ClerkConfig{
			Username:     cfg.Auth.ClerkUser,
			PasswordHash: cfg.Auth.ClerkPasswordHash,
			Store:        cfg.Shopify.ShopDomain,
		},
		auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
	)

	// La venta espera la certificación de la factura: el WriteTimeout cubre la llamada bloqueante al certificador.
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 120,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS FEL API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: cfg.App.Name, Ledger: ledger != nil})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		SaleUC:        saleUC,
		Customers:     customerResolver,
		InvoiceUC:     invoiceUC,
		Refunds:       refunds,
		JWTSecret:     cfg.JWT.Secret,
		WebhookSecret: cfg.Shopify.WebhookSecret,
		Log:           log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
