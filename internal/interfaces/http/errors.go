package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-fel/internal/application/dto"
	"github.com/jhoicas/pos-fel/internal/domain"
)

// errorStatus código HTTP y código de error para un error de dominio.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidDiscount):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicatePhone):
		return fiber.StatusConflict, "DUPLICATE_PHONE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrCustomerWriteFailed):
		return fiber.StatusBadGateway, "CUSTOMER_WRITE_FAILED"
	case errors.Is(err, domain.ErrOrderCreateFailed):
		return fiber.StatusBadGateway, "ORDER_CREATE_FAILED"
	case errors.Is(err, domain.ErrInvoiceRejected):
		return fiber.StatusBadGateway, "INVOICE_REJECTED"
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return fiber.StatusServiceUnavailable, "LEDGER_UNAVAILABLE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// respondError escribe el error con su código. Un teléfono duplicado incluye el cliente que lo tiene.
func respondError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	var dup *domain.DuplicatePhoneError
	if errors.As(err, &dup) {
		return c.Status(status).JSON(dto.ErrorDetailResponse{
			Code:    code,
			Message: dup.Error(),
			Details: dto.CustomerResponse{ID: dup.CustomerID, Name: dup.Name, Phone: dup.Phone},
		})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
