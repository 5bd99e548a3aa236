package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Venta
	ErrInvalidDiscount     = errors.New("descuento inválido")
	ErrDuplicatePhone      = errors.New("el teléfono ya pertenece a otro cliente")
	ErrCustomerWriteFailed = errors.New("no se pudo registrar el cliente")
	ErrOrderCreateFailed   = errors.New("no se pudo crear la orden")
	ErrInvoiceRejected     = errors.New("la factura electrónica fue rechazada")
	ErrTemplateRejected    = errors.New("plantilla de mensaje rechazada")
	ErrLedgerUnavailable   = errors.New("libro contable no disponible")
)

// DuplicatePhoneError identifica al cliente que ya posee el teléfono.
type DuplicatePhoneError struct {
	CustomerID string
	Name       string
	Phone      string
}

func (e *DuplicatePhoneError) Error() string {
	return fmt.Sprintf("el teléfono %s ya está registrado para %s", e.Phone, e.Name)
}

// Unwrap permite errors.Is(err, ErrDuplicatePhone).
func (e *DuplicatePhoneError) Unwrap() error { return ErrDuplicatePhone }
