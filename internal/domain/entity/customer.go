package entity

import "strings"

// Consumidor final: comprador sin NIT.
const (
	FinalConsumerTaxCode = "CF"
	FinalConsumerName    = "CONSUMIDOR FINAL"
)

// Customer cliente registrado en la tienda.
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// DisplayName nombre completo o "Sin nombre".
func (c Customer) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return "Sin nombre"
	}
	return name
}

// ResolvedCustomer identidad del cliente para una venta. No cambia durante la venta.
type ResolvedCustomer struct {
	ID      string
	TaxCode string
	Name    string
	Phone   string
	Email   string
	Address Address
	New     bool
}

// IsFinalConsumer indica si la factura va a consumidor final.
func (c ResolvedCustomer) IsFinalConsumer() bool {
	return c.TaxCode == FinalConsumerTaxCode
}

// NewResolvedCustomer aplica el NIT "CF" y el nombre "CONSUMIDOR FINAL" cuando no hay datos fiscales.
func NewResolvedCustomer(id, phone, email string, tax TaxInfo, isNew bool) ResolvedCustomer {
	code := NormalizeTaxCode(tax.TaxCode)
	name := strings.TrimSpace(tax.TaxName)
	if name == "" {
		name = FinalConsumerName
	}
	return ResolvedCustomer{
		ID:      id,
		TaxCode: code,
		Name:    name,
		Phone:   strings.TrimSpace(phone),
		Email:   strings.TrimSpace(email),
		Address: tax.Address,
		New:     isNew,
	}
}

// NormalizeTaxCode NIT en mayúsculas sin guiones ni espacios; vacío equivale a CF.
func NormalizeTaxCode(nit string) string {
	nit = strings.ToUpper(strings.TrimSpace(nit))
	nit = strings.NewReplacer("-", "", " ", "").Replace(nit)
	if nit == "" || nit == "C/F" {
		return FinalConsumerTaxCode
	}
	return nit
}

// PhoneDigits deja solo los dígitos del teléfono, para comparar números capturados con distinto formato.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SamePhone compara dos teléfonos por sus dígitos.
func SamePhone(a, b string) bool {
	da, db := PhoneDigits(a), PhoneDigits(b)
	return da != "" && da == db
}
