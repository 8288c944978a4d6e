package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrSaleNotFound        = errors.New("venta no encontrada")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrAlreadyExists       = errors.New("no se puede modificar una venta creada")
	ErrDuplicateRequest    = errors.New("solicitud duplicada en curso")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrUpstreamUnavailable = errors.New("servicio de productos no disponible")
	ErrPersistence         = errors.New("error de persistencia")

	// Errores del cliente remoto de productos; el orquestador los traduce a los de arriba.
	ErrRemoteNotFound    = errors.New("producto remoto no encontrado")
	ErrRemoteUnavailable = errors.New("error al comunicarse con el microservicio de productos")
)

// ValidationError describe un campo inválido de la solicitud.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ProductNotFoundError el servicio de productos no conoce el ID.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("no se encontró el producto con ID: %d", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError stock remoto menor que la cantidad solicitada.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("no hay suficiente stock para el producto %d: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// UpstreamError fallo de transporte o de servidor en el servicio de productos.
type UpstreamError struct {
	ProductID int64
	Cause     error
}

func (e *UpstreamError) Error() string {
	if e.ProductID != 0 {
		return fmt.Sprintf("producto %d: %v", e.ProductID, e.Cause)
	}
	return e.Cause.Error()
}

// Unwrap expone tanto el sentinel como la causa original.
func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstreamUnavailable, e.Cause} }

// PersistenceError fallo del almacén de ventas.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("guardar venta: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Cause} }
