package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Sale representa una venta inmutable: una vez persistida (ID asignado) no se modifica.
type Sale struct {
	ID            string
	Date          time.Time
	CustomerID    string
	Items         []SaleItem      // orden de la solicitud
	IvaPercent    decimal.Decimal // 15 = 15 %
	PaymentMethod PaymentMethod
}

// SaleItem línea de una venta. Price es una foto del precio al momento de la venta
// y nunca se vuelve a leer del producto.
type SaleItem struct {
	ProductID int64
	Price     decimal.Decimal
	Quantity  int
}

// SubTotal precio × cantidad.
func (i SaleItem) SubTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsNew indica si la venta aún no fue persistida.
func (s *Sale) IsNew() bool {
	return s.ID == ""
}

// Total suma exacta de los subtotales.
func (s *Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.SubTotal())
	}
	return total
}

// TotalWithIva Total × (1 + iva/100), redondeado a 2 decimales (half-up).
func (s *Sale) TotalWithIva() decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(s.IvaPercent.Div(hundred))
	return s.Total().Mul(factor).Round(2)
}

// Clone copia profunda; los almacenes en memoria la usan para no compartir el slice de items.
func (s *Sale) Clone() *Sale {
	c := *s
	c.Items = append([]SaleItem(nil), s.Items...)
	return &c
}
