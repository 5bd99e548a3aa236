package sheets

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// Columnas A:O en orden.
const (
	colOrderNumber = iota
	colProducts
	colTotal
	colTax
	colTaxCode
	colTaxName
	colUUID
	colSerie
	colAuthorization
	colTimestamp
	colStatus
	colPDFURL
	colAddress
	colPhone
	colChannel
	columnCount
)

// RecordToRow fila de 15 celdas. NIT y teléfono llevan apóstrofo para que la hoja no los
// convierta en número (se perdería el "+" o los ceros a la izquierda).
func RecordToRow(r entity.LedgerRecord) []interface{} {
	row := make([]interface{}, columnCount)
	row[colOrderNumber] = r.OrderNumber
	row[colProducts] = r.ProductsJSON
	row[colTotal] = r.Total.StringFixed(2)
	row[colTax] = r.Tax.StringFixed(2)
	row[colTaxCode] = asText(r.TaxCode)
	row[colTaxName] = r.TaxName
	row[colUUID] = r.InvoiceUUID
	row[colSerie] = r.Serie
	row[colAuthorization] = r.Authorization
	row[colTimestamp] = r.Timestamp
	row[colStatus] = r.Status
	row[colPDFURL] = r.PDFURL
	row[colAddress] = r.AddressJSON
	row[colPhone] = asText(r.Phone)
	row[colChannel] = r.Channel
	return row
}

// RowToRecord interpreta una fila leída de la hoja. Celdas faltantes quedan vacías.
func RowToRecord(rowIndex int, row []interface{}) entity.LedgerRecord {
	cell := func(i int) string {
		if i >= len(row) || row[i] == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(row[i]))
	}
	return entity.LedgerRecord{
		RowIndex:      rowIndex,
		OrderNumber:   cell(colOrderNumber),
		ProductsJSON:  cell(colProducts),
		Total:         parseAmount(cell(colTotal)),
		Tax:           parseAmount(cell(colTax)),
		TaxCode:       cell(colTaxCode),
		TaxName:       cell(colTaxName),
		InvoiceUUID:   cell(colUUID),
		Serie:         cell(colSerie),
		Authorization: cell(colAuthorization),
		Timestamp:     cell(colTimestamp),
		Status:        cell(colStatus),
		PDFURL:        cell(colPDFURL),
		AddressJSON:   cell(colAddress),
		Phone:         cell(colPhone),
		Channel:       cell(colChannel),
	}
}

// parseAmount acepta "Q1,234.50", "1234.5" o vacío (cero).
func parseAmount(s string) decimal.Decimal {
	s = strings.NewReplacer("Q", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func asText(s string) string {
	if s == "" {
		return ""
	}
	return "'" + s
}
