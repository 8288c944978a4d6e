package productclient

import (
	"context"
	"errors"

	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/infrastructure/cache"
)

// CachedProductLoader adapta Fetch como loader del caché: un producto inexistente se
// devuelve como nil (se cachea) y los errores de disponibilidad no se cachean.
func CachedProductLoader(client ports.ProductClient) cache.Loader[int64, *entity.Product] {
	return func(ctx context.Context, id int64) (*entity.Product, error) {
		p, err := client.Fetch(ctx, id)
		if errors.Is(err, domain.ErrRemoteNotFound) {
			return nil, nil
		}
		return p, err
	}
}
