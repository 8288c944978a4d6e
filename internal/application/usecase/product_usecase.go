package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

const (
	maxStock = 10000
)

var maxPrice = decimal.NewFromInt(1_000_000)

// ProductUseCase casos de uso CRUD del servicio de productos. Es la fuente de verdad del
// stock y del precio; el servicio de ventas lo consume por HTTP.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error) {
	product, err := toProduct(in)
	if err != nil {
		return nil, err
	}
	saved, err := uc.repo.Save(ctx, product)
	if err != nil {
		return nil, err
	}
	return toProductResponse(saved), nil
}

// GetByID obtiene un producto por ID (domain.ErrNotFound si no existe).
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update reemplaza todos los campos del producto (PUT completo, incluido el stock).
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.ProductRequest) (*dto.ProductResponse, error) {
	product, err := toProduct(in)
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	res, err := uc.repo.List(ctx, repository.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(res.Items))
	for _, p := range res.Items {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: res.Total},
	}, nil
}

// Delete elimina un producto por ID.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	return uc.repo.Delete(ctx, id)
}

func toProduct(in dto.ProductRequest) (*entity.Product, error) {
	name := strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return nil, &domain.ValidationError{Field: "name", Reason: "debe tener entre 3 y 100 caracteres"}
	}
	description := strings.TrimSpace(in.Description)
	if n := utf8.RuneCountInString(description); n < 10 || n > 500 {
		return nil, &domain.ValidationError{Field: "description", Reason: "debe tener entre 10 y 500 caracteres"}
	}
	if in.Price.IsNegative() || in.Price.GreaterThan(maxPrice) {
		return nil, &domain.ValidationError{Field: "price", Reason: "debe estar entre 0 y 1000000"}
	}
	if !in.Price.Equal(in.Price.Truncate(2)) {
		return nil, &domain.ValidationError{Field: "price", Reason: "admite como máximo 2 decimales"}
	}
	if in.Stock < 0 || in.Stock > maxStock {
		return nil, &domain.ValidationError{Field: "stock", Reason: "debe estar entre 0 y 10000"}
	}
	return &entity.Product{
		Name:        name,
		Price:       in.Price,
		Description: description,
		Stock:       in.Stock,
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Stock:       p.Stock,
	}
}
