package entity

import "time"

// Tipos de movimiento de stock registrados por el orquestador de ventas.
const (
	MovementTypeOut          = "out"          // descuento por venta
	MovementTypeCompensation = "compensation" // reversa de un descuento previo
)

// StockMovement registra un cambio de stock aplicado en el servicio de productos
// durante un intento de venta. Sirve como bitácora para compensar (saga).
type StockMovement struct {
	AttemptID     string
	ProductID     int64
	Type          string
	Quantity      int
	PreviousStock int
	NewStock      int
	CreatedAt     time.Time
}
