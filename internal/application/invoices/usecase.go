// Package invoices consultas y anulación manual de facturas desde la caja.
package invoices

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// DefaultCancelReason motivo cuando el cajero no indica uno.
const DefaultCancelReason = "Anulación solicitada desde POS"

// CancelResult resultado de una anulación manual.
type CancelResult struct {
	UUID          string
	LedgerUpdated bool
}

// InvoiceUseCase listado del libro, búsqueda de NIT y anulación manual.
type InvoiceUseCase struct {
	ledger   sales.Ledger // nil si el libro no está configurado
	invoices sales.InvoiceService
	log      zerolog.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(ledger sales.Ledger, invoices sales.InvoiceService, log zerolog.Logger) *InvoiceUseCase {
	return &InvoiceUseCase{ledger: ledger, invoices: invoices, log: log}
}

// List filas del libro; search filtra por número de orden, NIT, nombre o fecha (sin distinguir mayúsculas).
func (uc *InvoiceUseCase) List(ctx context.Context, search string) ([]entity.LedgerRecord, error) {
	if uc.ledger == nil {
		return nil, domain.ErrLedgerUnavailable
	}
	rows, err := uc.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return rows, nil
	}
	out := make([]entity.LedgerRecord, 0, len(rows))
	for _, r := range rows {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r entity.LedgerRecord, q string) bool {
	for _, field := range []string{r.OrderNumber, r.TaxCode, r.TaxName, r.Timestamp} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// SearchNIT busca el contribuyente en el certificador. "CF" no se consulta.
func (uc *InvoiceUseCase) SearchNIT(ctx context.Context, nit string) ([]entity.Taxpayer, error) {
	if strings.TrimSpace(nit) == "" {
		return nil, fmt.Errorf("%w: NIT es requerido", domain.ErrInvalidInput)
	}
	code := entity.NormalizeTaxCode(nit)
	if code == entity.FinalConsumerTaxCode {
		return []entity.Taxpayer{{TaxCode: code, TaxName: entity.FinalConsumerName}}, nil
	}
	found, err := uc.invoices.SearchNIT(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("buscar NIT: %w", err)
	}
	if len(found) == 0 {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

// Cancel anula la factura en el certificador y, si está en el libro, marca su fila como ANULADO.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, uuid, reason string) (*CancelResult, error) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, fmt.Errorf("%w: UUID de factura es requerido", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultCancelReason
	}
	if err := uc.invoices.Cancel(ctx, uuid, reason); err != nil {
		return nil, fmt.Errorf("anular factura: %w", err)
	}
	res := &CancelResult{UUID: uuid}
	if uc.ledger == nil {
		return res, nil
	}

	log := uc.log.With().Str("uuid", uuid).Logger()
	rows, err := uc.ledger.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("factura anulada, no se pudo leer el libro")
		return res, nil
	}
	for _, r := range rows {
		if r.InvoiceUUID != uuid {
			continue
		}
		if err := uc.ledger.UpdateStatus(ctx, r.RowIndex, entity.LedgerStatusCancelled); err != nil {
			log.Warn().Err(err).Int("row", r.RowIndex).Msg("factura anulada, no se pudo actualizar la fila")
			return res, nil
		}
		res.LedgerUpdated = true
		break
	}
	return res, nil
}
