package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
)

func validProduct() dto.ProductRequest {
	return dto.ProductRequest{
		Name:        "Aceite",
		Price:       decimal.RequireFromString("3.75"),
		Description: "Aceite de girasol 1 litro",
		Stock:       20,
	}
}

func TestProductUseCase_CrearObtenerReemplazar(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewProductRepository())
	ctx := context.Background()

	created, err := uc.Create(ctx, validProduct())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	in := validProduct()
	in.Stock = 15
	updated, err := uc.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Stock)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Stock)
	assert.Equal(t, "Aceite", got.Name)

	page, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page.Total)
	assert.Equal(t, 20, page.Page.Limit)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_UpdateInexistente(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewProductRepository())
	_, err := uc.Update(context.Background(), 404, validProduct())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_Validaciones(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*dto.ProductRequest)
		field string
	}{
		{"nombre corto", func(p *dto.ProductRequest) { p.Name = "ab" }, "name"},
		{"nombre largo", func(p *dto.ProductRequest) { p.Name = strings.Repeat("a", 101) }, "name"},
		{"descripción corta", func(p *dto.ProductRequest) { p.Description = "corta" }, "description"},
		{"precio negativo", func(p *dto.ProductRequest) { p.Price = decimal.NewFromInt(-1) }, "price"},
		{"precio excesivo", func(p *dto.ProductRequest) { p.Price = decimal.NewFromInt(1_000_001) }, "price"},
		{"tres decimales", func(p *dto.ProductRequest) { p.Price = decimal.RequireFromString("1.005") }, "price"},
		{"stock negativo", func(p *dto.ProductRequest) { p.Stock = -1 }, "stock"},
		{"stock excesivo", func(p *dto.ProductRequest) { p.Stock = 10001 }, "stock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewProductUseCase(memory.NewProductRepository())
			in := validProduct()
			tt.edit(&in)

			_, err := uc.Create(context.Background(), in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
