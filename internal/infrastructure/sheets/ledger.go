// Package sheets libro contable de ventas sobre Google Sheets (una fila por venta, columnas A:O).
package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// Verificar en tiempo de compilación que Ledger implementa el puerto.
var _ sales.Ledger = (*Ledger)(nil)

const (
	appendRange      = "A:O"
	readRange        = "A2:O"
	statusColumn     = "K"
	firstDataRow     = 2
	valueInputOption = "USER_ENTERED"
)

// Config cuenta de servicio y hoja destino.
type Config struct {
	ServiceAccountEmail string
	PrivateKey          string // PEM
	SpreadsheetID       string
	RequestsPerSecond   float64
	Burst               int
}

// Ledger adaptador del libro.
type Ledger struct {
	svc           *gsheets.Service
	spreadsheetID string
	limiter       *RateLimiter
}

// NewLedger autentica con la cuenta de servicio (JWT firmado con la llave privada).
func NewLedger(ctx context.Context, cfg Config) (*Ledger, error) {
	if cfg.ServiceAccountEmail == "" || cfg.PrivateKey == "" || cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: credenciales de Google Sheets incompletas", domain.ErrLedgerUnavailable)
	}
	conf := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	svc, err := gsheets.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets: crear servicio: %w", err)
	}
	return NewLedgerWithService(svc, cfg), nil
}

// NewLedgerWithService usa un servicio ya construido (endpoint propio en pruebas).
func NewLedgerWithService(svc *gsheets.Service, cfg Config) *Ledger {
	return &Ledger{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		limiter:       NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

// Append agrega la fila de una venta al final de la hoja.
func (l *Ledger) Append(ctx context.Context, rec entity.LedgerRecord) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{RecordToRow(rec)}}
	return l.call(ctx, "append", func() error {
		_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, appendRange, vr).
			ValueInputOption(valueInputOption).
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
}

// List lee todas las filas de datos. RowIndex de cada registro es su fila en la hoja.
func (l *Ledger) List(ctx context.Context) ([]entity.LedgerRecord, error) {
	var resp *gsheets.ValueRange
	err := l.call(ctx, "read", func() error {
		var err error
		resp, err = l.svc.Spreadsheets.Values.Get(l.spreadsheetID, readRange).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]entity.LedgerRecord, 0, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		out = append(out, RowToRecord(i+firstDataRow, row))
	}
	return out, nil
}

// UpdateStatus reescribe la columna de estado de una fila.
func (l *Ledger) UpdateStatus(ctx context.Context, rowIndex int, status string) error {
	if rowIndex < firstDataRow {
		return fmt.Errorf("%w: fila %d", domain.ErrInvalidInput, rowIndex)
	}
	cell := fmt.Sprintf("%s%d", statusColumn, rowIndex)
	vr := &gsheets.ValueRange{Values: [][]interface{}{{status}}}
	return l.call(ctx, "update "+cell, func() error {
		_, err := l.svc.Spreadsheets.Values.Update(l.spreadsheetID, cell, vr).
			ValueInputOption(valueInputOption).
			Context(ctx).
			Do()
		return err
	})
}

// call espera turno en el limitador, ejecuta fn y registra la pausa si la API devuelve 429.
// No reintenta.
func (l *Ledger) call(ctx context.Context, op string, fn func() error) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: sheets %s: %v", domain.ErrLedgerUnavailable, op, err)
	}
	err := fn()
	if IsRateLimited(err) {
		l.limiter.RecordRateLimitError(retryAfter(err))
	}
	return wrapError(op, err)
}
