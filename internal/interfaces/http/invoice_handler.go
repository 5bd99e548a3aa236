package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-fel/internal/application/dto"
	"github.com/jhoicas/pos-fel/internal/application/invoices"
)

// InvoiceHandler libro de ventas, NIT y anulación manual (protegido).
type InvoiceHandler struct {
	uc *invoices.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *invoices.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// List godoc
// @Summary      Listar facturas del libro
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        search  query  string  false  "número de orden, NIT, nombre o fecha"
// @Success      200     {object}  dto.LedgerListResponse
// @Failure      503     {object}  dto.ErrorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	rows, err := h.uc.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.LedgerRowResponse, len(rows))
	for i, r := range rows {
		items[i] = dto.NewLedgerRow(r)
	}
	return c.JSON(dto.LedgerListResponse{Items: items, Total: len(items)})
}

// Cancel godoc
// @Summary      Anular factura
// @Description  Anula la factura en el certificador y marca su fila del libro como ANULADO.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CancelInvoiceRequest  true  "uuid y motivo"
// @Success      200   {object}  dto.CancelInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Cancel(c.UserContext(), in.UUID, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CancelInvoiceResponse{Success: true, UUID: res.UUID, LedgerUpdated: res.LedgerUpdated})
}

// SearchNIT godoc
// @Summary      Buscar NIT
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        nit  path  string  true  "NIT o CF"
// @Success      200  {object}  dto.NITSearchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/nit/{nit} [get]
func (h *InvoiceHandler) SearchNIT(c *fiber.Ctx) error {
	found, err := h.uc.SearchNIT(c.UserContext(), c.Params("nit"))
	if err != nil {
		return respondError(c, err)
	}
	results := make([]dto.TaxpayerResponse, len(found))
	for i, t := range found {
		results[i] = dto.NewTaxpayer(t)
	}
	return c.JSON(dto.NITSearchResponse{Success: true, Results: results})
}
