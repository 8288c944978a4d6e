package sales

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// ProductCache vista cacheada de productos (solo para nombre/descripción, nunca para decidir stock).
// Un producto nil significa "no existe" y también se cachea.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*entity.Product, error)
	Put(id int64, product *entity.Product)
	Invalidate(id int64)
}

// StockLocker serializa las reservas de stock por producto.
// Lock toma todos los IDs en orden ascendente; unlock los libera y no depende del ctx del llamador.
type StockLocker interface {
	Lock(ctx context.Context, productIDs []int64) (unlock func(), err error)
}

// IdempotencyStore recuerda las claves Idempotency-Key de POST /sales.
type IdempotencyStore interface {
	// Reserve marca la clave como en curso. fresh=false si ya existía; en ese caso saleID es la
	// venta creada con esa clave, o "" si la primera solicitud aún no termina.
	Reserve(ctx context.Context, key string) (saleID string, fresh bool, err error)
	// Complete asocia la clave a la venta creada.
	Complete(ctx context.Context, key, saleID string) error
	// Release libera la clave tras un fallo para permitir reintentos.
	Release(ctx context.Context, key string) error
}
