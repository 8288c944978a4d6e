package memory

import (
	"context"
	"slices"
	"sync"
)

// StockLocker exclusión por producto dentro de un proceso. Cada ID tiene un semáforo de
// capacidad 1; los IDs se toman en orden ascendente para evitar interbloqueos.
type StockLocker struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewStockLocker construye el locker.
func NewStockLocker() *StockLocker {
	return &StockLocker{slots: make(map[int64]*slot)}
}

// Lock bloquea todos los IDs o ninguno. Respeta la cancelación de ctx mientras espera.
func (l *StockLocker) Lock(ctx context.Context, productIDs []int64) (func(), error) {
	ids := slices.Clone(productIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	acquired := make([]int64, 0, len(ids))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			l.release(acquired[i])
		}
	}
	for _, id := range ids {
		s := l.acquireSlot(id)
		select {
		case s.ch <- struct{}{}:
			acquired = append(acquired, id)
		case <-ctx.Done():
			l.dropRef(id)
			release()
			return nil, ctx.Err()
		}
	}
	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (l *StockLocker) acquireSlot(id int64) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	return s
}

func (l *StockLocker) release(id int64) {
	l.mu.Lock()
	s := l.slots[id]
	l.mu.Unlock()
	<-s.ch
	l.dropRef(id)
}

func (l *StockLocker) dropRef(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[id]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}

// NoopLocker no serializa nada (SALES_LOCK_DRIVER=none).
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, []int64) (func(), error) { return func() {}, nil }
