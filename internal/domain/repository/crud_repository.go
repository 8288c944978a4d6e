package repository

import "context"

// Page ventana solicitada de un listado.
type Page struct {
	Limit  int
	Offset int
}

// PageResult página de resultados con el total de registros.
type PageResult[T any] struct {
	Items []T
	Total int
}

// CrudRepository puerto genérico de persistencia por entidad e ID.
// Cada tecnología de almacenamiento aporta su implementación concreta.
// FindByID y Delete devuelven domain.ErrNotFound si el ID no existe.
type CrudRepository[T any, ID comparable] interface {
	Save(ctx context.Context, entity T) (T, error)
	FindByID(ctx context.Context, id ID) (T, error)
	Delete(ctx context.Context, id ID) error
	List(ctx context.Context, page Page) (PageResult[T], error)
}
