package ports

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// ProductClient define el puerto de salida hacia el servicio de productos.
// El servicio de ventas solo conoce este contrato, no el transporte HTTP.
type ProductClient interface {
	// Fetch lee el producto vigente. Falla con domain.ErrRemoteNotFound si el servicio
	// responde "no existe" y con domain.ErrRemoteUnavailable ante cualquier otro error.
	Fetch(ctx context.Context, id int64) (*entity.Product, error)

	// UpdateStock sobrescribe el stock enviando el producto completo (último que escribe gana).
	// Es una sola petición, no un descuento condicional; nunca se reintenta.
	UpdateStock(ctx context.Context, product *entity.Product, newStock int) error
}
