package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria para el servicio de productos (desarrollo y pruebas).
type ProductRepo struct {
	mu     sync.RWMutex
	nextID int64
	m      map[int64]entity.Product
}

// NewProductRepository construye el almacén vacío.
func NewProductRepository() *ProductRepo {
	return &ProductRepo{m: make(map[int64]entity.Product)}
}

func (r *ProductRepo) Save(_ context.Context, p *entity.Product) (*entity.Product, error) {
	if !p.IsNew() {
		return nil, domain.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *p
	stored.ID = r.nextID
	r.m[stored.ID] = stored
	return &stored, nil
}

func (r *ProductRepo) FindByID(_ context.Context, id int64) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.m[p.ID] = *p
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m, id)
	return nil
}

func (r *ProductRepo) List(_ context.Context, page repository.Page) (repository.PageResult[*entity.Product], error) {
	r.mu.RLock()
	all := make([]entity.Product, 0, len(r.m))
	for _, p := range r.m {
		all = append(all, p)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	out := repository.PageResult[*entity.Product]{Total: len(all)}
	for _, p := range window(all, page) {
		p := p
		out.Items = append(out.Items, &p)
	}
	return out, nil
}
