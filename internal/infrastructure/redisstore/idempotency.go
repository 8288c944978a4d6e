package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "idem:sale:"
	pendingMarker        = "-"
)

// IdempotencyStore claves Idempotency-Key en Redis (SET NX con TTL).
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el almacén.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	k := idempotencyKeyPrefix + key
	ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("reservar clave: %w", err)
	}
	if ok {
		return "", true, nil
	}
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Venció entre SETNX y GET: se trata como en curso para no duplicar.
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("leer clave: %w", err)
	}
	if val == pendingMarker {
		return "", false, nil
	}
	return val, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, saleID string) error {
	if err := s.client.Set(ctx, idempotencyKeyPrefix+key, saleID, s.ttl).Err(); err != nil {
		return fmt.Errorf("completar clave: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar clave: %w", err)
	}
	return nil
}
