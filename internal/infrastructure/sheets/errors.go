package sheets

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/jhoicas/pos-fel/internal/domain"
)

// IsRateLimited indica un 429 de la API.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests
}

// retryAfter lee la cabecera Retry-After (segundos) del error de la API.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// wrapError clasifica el error de Google como libro no disponible, con la causa legible.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%w: sheets %s: %v", domain.ErrLedgerUnavailable, op, err)
	}
	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: sheets %s: credenciales inválidas", domain.ErrLedgerUnavailable, op)
	case http.StatusForbidden:
		return fmt.Errorf("%w: sheets %s: la cuenta de servicio no tiene acceso a la hoja", domain.ErrLedgerUnavailable, op)
	case http.StatusNotFound:
		return fmt.Errorf("%w: sheets %s: hoja no encontrada", domain.ErrLedgerUnavailable, op)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: sheets %s: límite de solicitudes excedido", domain.ErrLedgerUnavailable, op)
	default:
		return fmt.Errorf("%w: sheets %s: HTTP %d: %s", domain.ErrLedgerUnavailable, op, gerr.Code, gerr.Message)
	}
}
