package memory

import (
	"context"
	"sync"
	"time"
)

// IdempotencyStore claves Idempotency-Key en memoria con vencimiento.
type IdempotencyStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	keys map[string]idemEntry
}

type idemEntry struct {
	saleID  string
	expires time.Time
}

// NewIdempotencyStore construye el almacén; ttl es la vida de cada clave.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, now: time.Now, keys: make(map[string]idemEntry)}
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.keys[key]; ok && now.Before(e.expires) {
		return e.saleID, false, nil
	}
	s.keys[key] = idemEntry{expires: now.Add(s.ttl)}
	s.sweep(now)
	return "", true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = idemEntry{saleID: saleID, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// sweep elimina claves vencidas; se llama con el lock tomado.
func (s *IdempotencyStore) sweep(now time.Time) {
	for k, e := range s.keys {
		if !now.Before(e.expires) {
			delete(s.keys, k)
		}
	}
}
