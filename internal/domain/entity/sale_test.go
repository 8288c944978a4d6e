package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSale_TotalesRedondeoHalfUp(t *testing.T) {
	tests := []struct {
		name     string
		items    []entity.SaleItem
		iva      string
		total    string
		totalIva string
	}{
		{"sin iva", []entity.SaleItem{{ProductID: 1, Price: dec("10.00"), Quantity: 3}}, "0", "30.00", "30.00"},
		{"iva 15", []entity.SaleItem{{ProductID: 1, Price: dec("10.50"), Quantity: 2}, {ProductID: 2, Price: dec("3.25"), Quantity: 3}}, "15", "30.75", "35.36"},
		// 1.00 × 1.125 = 1.125 → 1.13 (half-up, no al par)
		{"medio exacto sube", []entity.SaleItem{{ProductID: 1, Price: dec("1.00"), Quantity: 1}}, "12.5", "1.00", "1.13"},
		// 0.01 × 1.5 = 0.015 → 0.02
		{"centavo", []entity.SaleItem{{ProductID: 1, Price: dec("0.01"), Quantity: 1}}, "50", "0.01", "0.02"},
		{"iva 100", []entity.SaleItem{{ProductID: 1, Price: dec("2.50"), Quantity: 4}}, "100", "10.00", "20.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &entity.Sale{Items: tt.items, IvaPercent: dec(tt.iva)}
			assert.True(t, s.Total().Equal(dec(tt.total)), "total %s", s.Total())
			assert.True(t, s.TotalWithIva().Equal(dec(tt.totalIva)), "totalWithIva %s", s.TotalWithIva())
		})
	}
}

func TestSale_IsNewYClone(t *testing.T) {
	s := &entity.Sale{Items: []entity.SaleItem{{ProductID: 1, Price: dec("1"), Quantity: 1}}}
	assert.True(t, s.IsNew())

	c := s.Clone()
	c.ID = "x"
	c.Items[0].Quantity = 9
	assert.True(t, s.IsNew())
	assert.Equal(t, 1, s.Items[0].Quantity, "Clone no comparte los items")
}

func TestParsePaymentMethod(t *testing.T) {
	pm, err := entity.ParsePaymentMethod(" card ")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentMethodCard, pm)

	_, err = entity.ParsePaymentMethod("CHEQUE")
	assert.Error(t, err)
	_, err = entity.ParsePaymentMethod("")
	assert.Error(t, err)
}
