package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-fel/internal/application/auth"
	"github.com/jhoicas/pos-fel/internal/application/invoices"
	"github.com/jhoicas/pos-fel/internal/application/sales"
)

// RouterDeps dependencias para registrar las rutas.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	SaleUC        *sales.ProcessSaleUseCase
	Customers     *sales.CustomerResolver
	InvoiceUC     *invoices.InvoiceUseCase
	Refunds       *sales.RefundCompensator
	JWTSecret     string
	WebhookSecret string
	Log           zerolog.Logger
}

// Router registra todas las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Webhooks de la tienda (firma HMAC, sin JWT)
	webhookHandler := NewWebhookHandler(deps.Refunds, deps.WebhookSecret, deps.Log)
	app.Post("/webhooks/refunds/create", webhookHandler.RefundCreated)

	// Rutas protegidas: requieren Bearer Token con rol de caja
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole(auth.RoleCajero))

	saleHandler := NewSaleHandler(deps.SaleUC)
	protected.Post("/sales", saleHandler.Create)

	customerHandler := NewCustomerHandler(deps.Customers)
	protected.Get("/customers/check-phone", customerHandler.CheckPhone)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	protected.Get("/nit/:nit", invoiceHandler.SearchNIT)
	protected.Get("/invoices", invoiceHandler.List)
	protected.Post("/invoices/cancel", invoiceHandler.Cancel)
}
