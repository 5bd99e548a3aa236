package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-fel/internal/application/dto"
	"github.com/jhoicas/pos-fel/internal/application/sales"
)

// CustomerHandler consultas de clientes de la tienda (protegido).
type CustomerHandler struct {
	customers *sales.CustomerResolver
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(customers *sales.CustomerResolver) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// CheckPhone godoc
// @Summary      Verificar teléfono
// @Description  Indica si el teléfono ya pertenece a un cliente antes de registrar uno nuevo.
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        phone  query  string  true  "teléfono"
// @Success      200    {object}  dto.CheckPhoneResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      502    {object}  dto.ErrorResponse
// @Router       /api/customers/check-phone [get]
func (h *CustomerHandler) CheckPhone(c *fiber.Ctx) error {
	phone := c.Query("phone")
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "phone es requerido"})
	}
	found, err := h.customers.FindByPhone(c.UserContext(), phone)
	if err != nil {
		status, code := errorStatus(err)
		if status == fiber.StatusInternalServerError {
			status, code = fiber.StatusBadGateway, "SHOP_UNAVAILABLE"
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
	}
	return c.JSON(dto.CheckPhoneResponse{Exists: found != nil, Customer: dto.NewCustomerResponse(found)})
}
