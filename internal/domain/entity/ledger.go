package entity

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Estados de una fila del libro contable (columna K).
const (
	LedgerStatusPaid         = "paid"
	LedgerStatusPending      = "pending"
	LedgerStatusUnconfirmed  = "pago sin confirmar" // orden completada, el cobro falló en la tienda
	LedgerStatusDraft        = "BORRADOR - REVISAR" // no se completó; la fila lleva el nombre del borrador
	LedgerStatusCancelled    = "ANULADO"
	LedgerStatusRefunded     = "ANULADO - DEVOLUCIÓN"
	LedgerStatusCancelFailed = "ANULADO - ERROR FEL"
)

// LedgerRecord fila del libro contable. RowIndex es el número de fila en la hoja (1 = encabezados).
type LedgerRecord struct {
	RowIndex      int
	OrderNumber   string
	ProductsJSON  string
	Total         decimal.Decimal
	Tax           decimal.Decimal
	TaxCode       string
	TaxName       string
	InvoiceUUID   string
	Serie         string
	Authorization string
	Timestamp     string // DD/MM/YYYY HH:MM:SS, hora de Guatemala
	Status        string
	PDFURL        string
	AddressJSON   string
	Phone         string
	Channel       string
}

// LedgerProduct producto tal como se guarda en la columna B.
type LedgerProduct struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
}

// IsCancelled indica si la factura de la fila ya fue anulada.
// Un intento de anulación fallido no cuenta: debe reintentarse.
func (r LedgerRecord) IsCancelled() bool {
	s := NormalizeStatus(r.Status)
	return s == NormalizeStatus(LedgerStatusCancelled) || s == NormalizeStatus(LedgerStatusRefunded)
}

// MatchesOrder compara el número de orden de la fila con cualquiera de los candidatos.
func (r LedgerRecord) MatchesOrder(candidates ...string) bool {
	num := strings.TrimSpace(r.OrderNumber)
	if num == "" {
		return false
	}
	for _, c := range candidates {
		if c != "" && num == strings.TrimSpace(c) {
			return true
		}
	}
	return false
}

var accentRemover = runes.Remove(runes.In(unicode.Mn))

// NormalizeStatus mayúsculas sin tildes ni espacios sobrantes ("anulado - devolucion" = "ANULADO - DEVOLUCIÓN").
func NormalizeStatus(s string) string {
	t := transform.Chain(norm.NFD, accentRemover, norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.Join(strings.Fields(out), " "))
}
