package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo almacén de ventas en memoria (un solo proceso). Guarda copias: lo que el llamador
// haga con la venta devuelta no altera lo almacenado.
type SaleRepo struct {
	mu    sync.RWMutex
	sales map[string]*entity.Sale
}

// NewSaleRepository construye el almacén vacío.
func NewSaleRepository() *SaleRepo {
	return &SaleRepo{sales: make(map[string]*entity.Sale)}
}

func (r *SaleRepo) Save(_ context.Context, sale *entity.Sale) (*entity.Sale, error) {
	stored := sale.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored.IsNew() {
		stored.ID = uuid.New().String()
	} else if _, ok := r.sales[stored.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	r.sales[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *SaleRepo) FindByID(_ context.Context, id string) (*entity.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *SaleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sales, id)
	return nil
}

// List ordena de la más reciente a la más antigua (empate por ID).
func (r *SaleRepo) List(_ context.Context, page repository.Page) (repository.PageResult[*entity.Sale], error) {
	r.mu.RLock()
	all := make([]*entity.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		all = append(all, s)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			return all[i].ID < all[j].ID
		}
		return all[i].Date.After(all[j].Date)
	})
	out := repository.PageResult[*entity.Sale]{Total: len(all)}
	for _, s := range window(all, page) {
		out.Items = append(out.Items, s.Clone())
	}
	return out, nil
}

func window[T any](items []T, page repository.Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && len(items) > page.Limit {
		items = items[:page.Limit]
	}
	return items
}
