package redisstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/ventas-api/pkg/logger"
)

const lockKeyPrefix = "lock:product:"

// releaseScript borra la clave solo si sigue siendo nuestra (el token coincide).
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// renewScript extiende el TTL solo si la clave sigue siendo nuestra.
var renewScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`)

// StockLocker lock por producto compartido entre réplicas del servicio de ventas.
// Cada clave lleva un token aleatorio y vence sola tras ttl si el proceso muere. Mientras el
// lock está tomado se renueva cada ttl/3, así una venta lenta no lo pierde a mitad del commit.
type StockLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	log    *logger.Logger
}

// NewStockLocker construye el locker.
func NewStockLocker(client *redis.Client, ttl time.Duration, log *logger.Logger) *StockLocker {
	return &StockLocker{client: client, ttl: ttl, retry: 25 * time.Millisecond, log: log}
}

// Lock toma los IDs en orden ascendente; si no puede tomarlos todos antes de que venza ctx,
// libera los tomados y devuelve el error.
func (l *StockLocker) Lock(ctx context.Context, productIDs []int64) (func(), error) {
	ids := slices.Clone(productIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	token := uuid.New().String()

	acquired := make([]string, 0, len(ids))
	for _, id := range ids {
		key := fmt.Sprintf("%s%d", lockKeyPrefix, id)
		if err := l.acquire(ctx, key, token); err != nil {
			l.release(acquired, token)
			return nil, fmt.Errorf("lock producto %d: %w", id, err)
		}
		acquired = append(acquired, key)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(acquired, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(acquired, token)
		})
	}, nil
}

// keepAlive renueva las claves hasta que se cierre stop.
func (l *StockLocker) keepAlive(keys []string, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := l.ttl / 3
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.renew(keys, token)
		}
	}
}

func (l *StockLocker) renew(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
	defer cancel()
	for _, key := range keys {
		n, err := renewScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
		switch {
		case err != nil:
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo renovar el lock de stock")
		case n == 0:
			l.log.Error().Str("key", key).Msg("CRÍTICO: lock de stock perdido durante la venta")
		}
	}
}

func (l *StockLocker) acquire(ctx context.Context, key, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

// release no depende del ctx del llamador: la venta pudo terminar con el ctx ya cancelado.
func (l *StockLocker) release(keys []string, token string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		err := releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			// La clave vencerá sola por el TTL.
			l.log.Warn().Err(err).Str("key", keys[i]).Msg("no se pudo liberar el lock de stock")
		}
	}
}
