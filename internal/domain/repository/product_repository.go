package repository

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (servicio de productos).
// Save crea; Update sobrescribe todos los campos (incluido el stock).
type ProductRepository interface {
	CrudRepository[*entity.Product, int64]
	Update(ctx context.Context, product *entity.Product) error
}
