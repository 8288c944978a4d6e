// Package cache contiene el caché acotado con expiración usado frente al servicio de productos.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader obtiene el valor de una clave ausente o vencida. Un valor cero (p. ej. un puntero nil
// para "no existe") se guarda igual que cualquier otro: caché negativo. Los errores no se guardan.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Option configura el caché.
type Option func(*options)

type options struct {
	now   func() time.Time
	keyOf func(key any) string
}

// WithClock reemplaza el reloj (pruebas de expiración).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithKeyFunc reemplaza la conversión de clave a texto usada para compartir cargas
// concurrentes. Debe ser inyectiva: dos claves distintas con el mismo texto comparten una
// carga y reciben el mismo valor. Por defecto fmt.Sprint, correcto para enteros y strings.
func WithKeyFunc(keyOf func(key any) string) Option {
	return func(o *options) { o.keyOf = keyOf }
}

type entry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// TTLCache caché con un máximo de entradas (expulsa la menos usada recientemente) y
// expiración por tiempo desde la escritura. Una sola carga concurrente por clave: quienes
// piden una clave que se está cargando reciben el mismo valor o el mismo error.
type TTLCache[K comparable, V any] struct {
	maxEntries int
	ttl        time.Duration
	load       Loader[K, V]
	now        func() time.Time
	keyOf      func(key any) string

	mu    sync.Mutex
	ll    *list.List
	items map[K]*list.Element

	group singleflight.Group
}

// NewTTLCache construye el caché. maxEntries < 1 se trata como 1.
func NewTTLCache[K comparable, V any](maxEntries int, ttl time.Duration, load Loader[K, V], opts ...Option) *TTLCache[K, V] {
	o := options{now: time.Now, keyOf: func(key any) string { return fmt.Sprint(key) }}
	for _, opt := range opts {
		opt(&o)
	}
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &TTLCache[K, V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		load:       load,
		now:        o.now,
		keyOf:      o.keyOf,
		ll:         list.New(),
		items:      make(map[K]*list.Element),
	}
}

// Get devuelve el valor vigente de key o lo carga con el Loader.
// La carga no hereda la cancelación del llamador que la dispara: otros llamadores pueden
// estar esperando el mismo resultado.
func (c *TTLCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	res, err, _ := c.group.Do(c.keyOf(key), func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := c.load(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		c.Put(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

// Put guarda value como recién cargado.
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.storedAt = now
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&entry[K, V]{key: key, value: value, storedAt: now})
	for c.ll.Len() > c.maxEntries {
		c.removeElement(c.ll.Back())
	}
}

// Invalidate elimina key si existe.
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Len número de entradas guardadas (incluye vencidas aún no recolectadas).
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *TTLCache[K, V]) lookup(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.removeElement(el)
		return zero, false
	}
	c.ll.MoveToFront(el)
	return e.value, true
}

func (c *TTLCache[K, V]) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}
