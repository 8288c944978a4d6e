package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /sales.
type CreateSaleRequest struct {
	CustomerID    string            `json:"customerId"`
	Items         []SaleItemRequest `json:"items"`
	IvaPercent    *decimal.Decimal  `json:"ivaPercent,omitempty"` // nil = 15
	PaymentMethod string            `json:"paymentMethod"`
}

// SaleItemRequest producto y cantidad solicitada.
type SaleItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// SaleResponse venta con totales calculados.
type SaleResponse struct {
	ID            string             `json:"id"`
	Date          time.Time          `json:"date"`
	CustomerID    string             `json:"customerId"`
	Items         []SaleItemResponse `json:"items"`
	IvaPercent    decimal.Decimal    `json:"ivaPercent"`
	PaymentMethod string             `json:"paymentMethod"`
	Total         decimal.Decimal    `json:"total"`
	TotalWithIva  decimal.Decimal    `json:"totalWithIva"`
}

// SaleItemResponse línea de venta. Product se completa desde el caché de productos y queda
// vacío si el producto ya no existe.
type SaleItemResponse struct {
	ProductID int64            `json:"productId"`
	Product   *ProductResponse `json:"product,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  int              `json:"quantity"`
	SubTotal  decimal.Decimal  `json:"subTotal"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
