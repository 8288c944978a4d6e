package sales_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes escritos a mano
// ──────────────────────────────────────────────────────────────────────────────

type stockUpdate struct {
	ProductID int64
	NewStock  int
}

// fakeProductClient servicio de productos en memoria con fallos programables.
type fakeProductClient struct {
	mu          sync.Mutex
	products    map[int64]entity.Product
	updates     []stockUpdate
	fetches     int
	fetchErr    map[int64]error
	updateErr   map[int64]error
	afterFetch  func()
	afterUpdate func(id int64)
	maxStock    int // > 0: rechaza stock mayor, como el servicio de productos
}

func newFakeProductClient(products ...entity.Product) *fakeProductClient {
	f := &fakeProductClient{
		products:  make(map[int64]entity.Product),
		fetchErr:  make(map[int64]error),
		updateErr: make(map[int64]error),
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductClient) Fetch(ctx context.Context, id int64) (*entity.Product, error) {
	f.mu.Lock()
	f.fetches++
	hook := f.afterFetch
	if err := f.fetchErr[id]; err != nil {
		f.mu.Unlock()
		return nil, err
	}
	p, ok := f.products[id]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if !ok {
		return nil, domain.ErrRemoteNotFound
	}
	return &p, nil
}

func (f *fakeProductClient) UpdateStock(ctx context.Context, product *entity.Product, newStock int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	f.mu.Lock()
	if err := f.updateErr[product.ID]; err != nil {
		f.mu.Unlock()
		return err
	}
	current, ok := f.products[product.ID]
	if !ok {
		f.mu.Unlock()
		return domain.ErrRemoteNotFound
	}
	if f.maxStock > 0 && newStock > f.maxStock {
		f.mu.Unlock()
		return fmt.Errorf("%w: status 400: stock debe estar entre 0 y %d", domain.ErrRemoteUnavailable, f.maxStock)
	}
	current.Stock = newStock
	f.products[product.ID] = current
	f.updates = append(f.updates, stockUpdate{ProductID: product.ID, NewStock: newStock})
	hook := f.afterUpdate
	f.mu.Unlock()
	if hook != nil {
		hook(product.ID)
	}
	return nil
}

// adjust simula un cambio de stock hecho por otro cliente.
func (f *fakeProductClient) adjust(id int64, delta int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Stock += delta
	f.products[id] = p
}

func (f *fakeProductClient) stock(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

func (f *fakeProductClient) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeProductClient) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
}

// fakeSaleRepo almacén de ventas en memoria.
type fakeSaleRepo struct {
	mu      sync.Mutex
	sales   map[string]*entity.Sale
	saves   int
	saveErr error
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[string]*entity.Sale)}
}

func (r *fakeSaleRepo) Save(_ context.Context, s *entity.Sale) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	if !s.IsNew() {
		if _, ok := r.sales[s.ID]; ok {
			return nil, domain.ErrAlreadyExists
		}
	}
	stored := s.Clone()
	if stored.IsNew() {
		stored.ID = uuid.New().String()
	}
	r.sales[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id string) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *fakeSaleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sales, id)
	return nil
}

func (r *fakeSaleRepo) List(_ context.Context, page repository.Page) (repository.PageResult[*entity.Sale], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := repository.PageResult[*entity.Sale]{Total: len(r.sales)}
	for _, s := range r.sales {
		out.Items = append(out.Items, s.Clone())
	}
	if page.Offset >= len(out.Items) {
		out.Items = nil
		return out, nil
	}
	out.Items = out.Items[page.Offset:]
	if len(out.Items) > page.Limit {
		out.Items = out.Items[:page.Limit]
	}
	return out, nil
}

func (r *fakeSaleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sales)
}

// fakeCache caché sin expiración; Get delega en el cliente cuando no hay entrada.
type fakeCache struct {
	mu     sync.Mutex
	items  map[int64]*entity.Product
	client *fakeProductClient
}

func newFakeCache(client *fakeProductClient) *fakeCache {
	return &fakeCache{items: make(map[int64]*entity.Product), client: client}
}

func (c *fakeCache) Get(ctx context.Context, id int64) (*entity.Product, error) {
	c.mu.Lock()
	p, ok := c.items[id]
	c.mu.Unlock()
	if ok {
		return p, nil
	}
	p, err := c.client.Fetch(ctx, id)
	if errors.Is(err, domain.ErrRemoteNotFound) {
		p, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Put(id, p)
	return p, nil
}

func (c *fakeCache) Put(id int64, p *entity.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = p
}

func (c *fakeCache) Invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

// fakeLocker registra los IDs bloqueados.
type fakeLocker struct {
	mu       sync.Mutex
	locked   [][]int64
	unlocked int
	err      error
}

func (l *fakeLocker) Lock(_ context.Context, ids []int64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, append([]int64(nil), ids...))
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked++
	}, nil
}

// fakeIdempotency almacén de claves en memoria.
type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: make(map[string]string)}
}

func (f *fakeIdempotency) Reserve(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.keys[key]; ok {
		return id, false, nil
	}
	f.keys[key] = ""
	return "", true, nil
}

func (f *fakeIdempotency) Complete(_ context.Context, key, saleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = saleID
	return nil
}

func (f *fakeIdempotency) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	return nil
}
