package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-fel/internal/application/dto"
	"github.com/jhoicas/pos-fel/internal/application/sales"
)

// SaleHandler registra ventas de caja (protegido).
type SaleHandler struct {
	uc *sales.ProcessSaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.ProcessSaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Crea la orden en la tienda, certifica la factura FEL, cobra, entrega, notifica y anota en el libro.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateSaleRequest  true  "venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorDetailResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Execute(c.UserContext(), in.ToEntity())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newSaleResponse(res))
}

func newSaleResponse(res *sales.SaleResult) dto.SaleResponse {
	warnings := make([]dto.WarningResponse, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = dto.WarningResponse{Step: w.Step, Message: w.Message}
	}
	return dto.SaleResponse{
		SaleID:        res.SaleID,
		OrderID:       res.OrderID,
		OrderNumber:   res.OrderNumber,
		Total:         res.Total,
		Invoice:       dto.NewInvoiceSummary(res.Invoice),
		PaymentStatus: res.PaymentStatus,
		Fulfilled:     res.Fulfilled,
		Notification:  res.Delivery,
		LedgerWritten: res.LedgerWritten,
		Warnings:      warnings,
	}
}
