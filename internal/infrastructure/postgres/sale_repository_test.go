package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-api/pkg/config"
)

// getPool conecta a DATABASE_URL (o localhost) y omite el test si no hay PostgreSQL.
func getPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := config.DBConfig{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Host:        "localhost",
		Port:        5432,
		User:        "postgres",
		Password:    os.Getenv("DB_PASSWORD"),
		DBName:      "ventas_test",
		SSLMode:     "disable",
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(context.Background(), pool))
	return pool
}

func TestSaleRepo_SaveYFindByID(t *testing.T) {
	pool := getPool(t)
	repo := postgres.NewSaleRepository(pool)
	ctx := context.Background()

	sale := &entity.Sale{
		Date:          time.Now().UTC().Truncate(time.Millisecond),
		CustomerID:    "1710034065",
		IvaPercent:    decimal.NewFromInt(15),
		PaymentMethod: entity.PaymentMethodCard,
		Items: []entity.SaleItem{
			{ProductID: 20, Price: decimal.RequireFromString("3.10"), Quantity: 1},
			{ProductID: 10, Price: decimal.RequireFromString("1.99"), Quantity: 4},
		},
	}
	saved, err := repo.Save(ctx, sale)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.True(t, sale.IsNew(), "la entrada no se modifica")
	t.Cleanup(func() { _ = repo.Delete(ctx, saved.ID) })

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, entity.PaymentMethodCard, got.PaymentMethod)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(20), got.Items[0].ProductID, "se conserva el orden de la solicitud")
	assert.True(t, got.Total().Equal(saved.Total()))
}

func TestSaleRepo_SaveSobreExistenteFalla(t *testing.T) {
	pool := getPool(t)
	repo := postgres.NewSaleRepository(pool)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &entity.Sale{
		Date: time.Now(), CustomerID: "c1", IvaPercent: decimal.Zero, PaymentMethod: entity.PaymentMethodCash,
		Items: []entity.SaleItem{{ProductID: 1, Price: decimal.NewFromInt(1), Quantity: 1}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(ctx, saved.ID) })

	again := saved.Clone()
	again.Items[0].Quantity = 99
	_, err = repo.Save(ctx, again)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestSaleRepo_NoEncontrado(t *testing.T) {
	pool := getPool(t)
	repo := postgres.NewSaleRepository(pool)

	_, err := repo.FindByID(context.Background(), "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), "00000000-0000-0000-0000-000000000000"), domain.ErrNotFound)

	page, err := repo.List(context.Background(), repository.Page{Limit: 5})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(page.Items), 5)
}

func TestProductRepo_CRUD(t *testing.T) {
	pool := getPool(t)
	repo := postgres.NewProductRepository(pool)
	ctx := context.Background()

	p, err := repo.Save(ctx, &entity.Product{
		Name: "Azúcar", Price: decimal.RequireFromString("2.40"), Description: "Azúcar morena 2kg", Stock: 12,
	})
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	t.Cleanup(func() { _ = repo.Delete(ctx, p.ID) })

	p.Stock = 7
	require.NoError(t, repo.Update(ctx, p))
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.40")))

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, p), domain.ErrNotFound)
}
