package repository

import "github.com/jhoicas/ventas-api/internal/domain/entity"

// SaleRepository puerto de persistencia de ventas.
// Save asigna el ID a una venta nueva; si la venta ya trae un ID existente falla con
// domain.ErrAlreadyExists y deja intacta la venta guardada (no hay camino de actualización).
type SaleRepository interface {
	CrudRepository[*entity.Sale, string]
}
