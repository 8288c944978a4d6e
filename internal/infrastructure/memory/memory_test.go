package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
)

func TestSaleRepo_SaveAsignaIDYNoSobrescribe(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()

	in := &entity.Sale{
		Date:          time.Now(),
		CustomerID:    "c1",
		PaymentMethod: entity.PaymentMethodCash,
		Items:         []entity.SaleItem{{ProductID: 1, Price: decimal.NewFromInt(2), Quantity: 1}},
	}
	saved, err := repo.Save(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.True(t, in.IsNew(), "la entrada no recibe el ID")

	// Modificar la copia devuelta no altera lo guardado.
	saved.Items[0].Quantity = 50
	_, err = repo.Save(ctx, saved)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestSaleRepo_ListPaginaMasRecientePrimero(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Save(ctx, &entity.Sale{Date: base.Add(time.Duration(i) * time.Hour), CustomerID: "c"})
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, repository.Page{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, base.Add(3*time.Hour), page.Items[0].Date)
	assert.Equal(t, base.Add(2*time.Hour), page.Items[1].Date)

	empty, err := repo.List(ctx, repository.Page{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestSaleRepo_Delete(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()
	saved, err := repo.Save(ctx, &entity.Sale{CustomerID: "c"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), domain.ErrNotFound)
	_, err = repo.FindByID(ctx, saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_CRUD(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()

	a, err := repo.Save(ctx, &entity.Product{Name: "Pan", Stock: 3})
	require.NoError(t, err)
	b, err := repo.Save(ctx, &entity.Product{Name: "Sal", Stock: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	a.Stock = 9
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)

	assert.ErrorIs(t, repo.Update(ctx, &entity.Product{ID: 99}), domain.ErrNotFound)
	_, err = repo.Save(ctx, a)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	page, err := repo.List(ctx, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Pan", page.Items[0].Name)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), domain.ErrNotFound)
}

func TestStockLocker_SerializaMismoProducto(t *testing.T) {
	locker := memory.NewStockLocker()
	ctx := context.Background()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids := []int64{1, 2}
			if i%2 == 0 {
				ids = []int64{2, 1}
			}
			unlock, err := locker.Lock(ctx, ids)
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
}

func TestStockLocker_ProductosDistintosNoSeBloquean(t *testing.T) {
	locker := memory.NewStockLocker()
	unlock1, err := locker.Lock(context.Background(), []int64{1})
	require.NoError(t, err)
	defer unlock1()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlock2, err := locker.Lock(ctx, []int64{2})
	require.NoError(t, err)
	unlock2()
}

func TestStockLocker_RespetaCancelacion(t *testing.T) {
	locker := memory.NewStockLocker()
	unlock, err := locker.Lock(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, []int64{2, 3})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Tras el fallo, el 3 quedó libre.
	unlock3, err := locker.Lock(context.Background(), []int64{3})
	require.NoError(t, err)
	unlock3()

	unlock()
	unlock() // idempotente
	unlockAll, err := locker.Lock(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	unlockAll()
}

func TestIdempotencyStore_Ciclo(t *testing.T) {
	store := memory.NewIdempotencyStore(time.Hour)
	ctx := context.Background()

	id, fresh, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Empty(t, id)

	id, fresh, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Empty(t, id, "en curso")

	require.NoError(t, store.Complete(ctx, "k", "venta-1"))
	id, fresh, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, "venta-1", id)

	require.NoError(t, store.Release(ctx, "k"))
	_, fresh, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, fresh)
}
