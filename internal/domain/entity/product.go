package entity

import "github.com/shopspring/decimal"

// Product representa un producto del servicio de productos.
// En el servicio de ventas es solo una vista (DTO de lectura/escritura): el dueño del stock y
// del precio es el servicio de productos, y se actualiza siempre con el cuerpo completo.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"` // 2 decimales
	Description string          `json:"description"`
	Stock       int             `json:"stock"` // nunca negativo
}

// IsNew indica si el producto aún no tiene ID asignado.
func (p *Product) IsNew() bool {
	return p.ID == 0
}
