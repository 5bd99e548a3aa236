package entity_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

func validSale() entity.SaleRequest {
	return entity.SaleRequest{
		CustomerMode: entity.CustomerNew,
		Phone:        "+502 5555 1234",
		Items: []entity.LineItem{
			{VariantID: "gid://shopify/ProductVariant/1", Title: "Aceite 1L", Quantity: 2, UnitPrice: decimal.RequireFromString("30.00")},
			{Title: "Servicio de entrega", Quantity: 1, UnitPrice: decimal.RequireFromString("40.00")},
		},
		Discount:      decimal.RequireFromString("10"),
		PaymentMethod: "efectivo",
	}
}

// ── SaleRequest.Validate ─────────────────────────────────────────────────────

func TestSaleRequest_Validate_Valida(t *testing.T) {
	assert.NoError(t, validSale().Validate())
	assert.True(t, validSale().Subtotal().Equal(decimal.NewFromInt(100)))
}

func TestSaleRequest_Validate_Errores(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*entity.SaleRequest)
		want   error
	}{
		{"sin productos", func(r *entity.SaleRequest) { r.Items = nil }, domain.ErrInvalidInput},
		{"cliente nuevo sin teléfono", func(r *entity.SaleRequest) { r.Phone = " " }, domain.ErrInvalidInput},
		{"existente sin id", func(r *entity.SaleRequest) { r.CustomerMode = entity.CustomerExisting }, domain.ErrInvalidInput},
		{"modo desconocido", func(r *entity.SaleRequest) { r.CustomerMode = "otro" }, domain.ErrInvalidInput},
		{"cantidad cero", func(r *entity.SaleRequest) { r.Items[0].Quantity = 0 }, domain.ErrInvalidInput},
		{"artículo libre sin nombre", func(r *entity.SaleRequest) { r.Items[1].Title = "" }, domain.ErrInvalidInput},
		{"crédito sin plazo", func(r *entity.SaleRequest) { r.Credit = true }, domain.ErrInvalidInput},
		{"descuento mayor al subtotal", func(r *entity.SaleRequest) { r.Discount = decimal.NewFromInt(101) }, domain.ErrInvalidDiscount},
		{"descuento negativo", func(r *entity.SaleRequest) { r.Discount = decimal.NewFromInt(-1) }, domain.ErrInvalidDiscount},
		{"subtotal cero", func(r *entity.SaleRequest) {
			r.Items = []entity.LineItem{{Title: "Regalo", Quantity: 1, UnitPrice: decimal.Zero}}
			r.Discount = decimal.Zero
		}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validSale()
			r.Items = append([]entity.LineItem(nil), r.Items...)
			tc.mutate(&r)
			err := r.Validate()
			assert.True(t, errors.Is(err, tc.want), "esperado %v, obtenido %v", tc.want, err)
		})
	}
}

func TestSaleRequest_ChannelLabel(t *testing.T) {
	r := validSale()
	assert.Equal(t, "POS - EFECTIVO", r.ChannelLabel("POS"))

	r.Credit = true
	r.CreditDays = 30
	assert.Equal(t, "POS - CRÉDITO 30 DÍAS", r.ChannelLabel(""))

	r = validSale()
	r.PaymentMethod = ""
	assert.Equal(t, "POS", r.ChannelLabel("POS"))
}

// ── Cliente ──────────────────────────────────────────────────────────────────

func TestNormalizeTaxCode(t *testing.T) {
	assert.Equal(t, "CF", entity.NormalizeTaxCode(""))
	assert.Equal(t, "CF", entity.NormalizeTaxCode("c/f"))
	assert.Equal(t, "12345678", entity.NormalizeTaxCode(" 1234567-8 "))
	assert.Equal(t, "1234567K", entity.NormalizeTaxCode("1234567-k"))
}

func TestNewResolvedCustomer_ConsumidorFinal(t *testing.T) {
	c := entity.NewResolvedCustomer("gid://shopify/Customer/1", "55551234", "", entity.TaxInfo{}, true)
	assert.True(t, c.IsFinalConsumer())
	assert.Equal(t, entity.FinalConsumerName, c.Name)
	assert.True(t, c.New)
}

func TestSamePhone(t *testing.T) {
	assert.True(t, entity.SamePhone("+502 5555-1234", "50255551234"))
	assert.False(t, entity.SamePhone("+502 5555-1234", "+502 5555-1235"))
	assert.False(t, entity.SamePhone("", ""))
}

// ── Libro contable ───────────────────────────────────────────────────────────

func TestLedgerRecord_IsCancelled(t *testing.T) {
	cases := map[string]bool{
		"paid":                 false,
		"pending":              false,
		"ANULADO":              true,
		"anulado":              true,
		"ANULADO - DEVOLUCIÓN": true,
		"Anulado - Devolucion": true,
		"ANULADO - ERROR FEL":  false,
		"":                     false,
	}
	for status, want := range cases {
		r := entity.LedgerRecord{Status: status}
		assert.Equal(t, want, r.IsCancelled(), "estado %q", status)
	}
}

func TestLedgerRecord_MatchesOrder(t *testing.T) {
	r := entity.LedgerRecord{OrderNumber: "#1024"}
	assert.True(t, r.MatchesOrder("", "#1024"))
	assert.False(t, r.MatchesOrder("1024"))
	assert.False(t, entity.LedgerRecord{}.MatchesOrder(""))
}
