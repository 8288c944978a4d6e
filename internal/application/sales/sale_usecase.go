package sales

import (
	"context"
	"errors"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

// SaleUseCase casos de uso del servicio de ventas expuestos por HTTP.
type SaleUseCase struct {
	create      *CreateSaleUseCase
	repo        repository.SaleRepository
	cache       ProductCache
	idempotency IdempotencyStore
	log         *logger.Logger
}

// NewSaleUseCase construye el caso de uso. idempotency puede ser nil (Idempotency-Key ignorado).
func NewSaleUseCase(
	create *CreateSaleUseCase,
	repo repository.SaleRepository,
	cache ProductCache,
	idempotency IdempotencyStore,
	log *logger.Logger,
) *SaleUseCase {
	return &SaleUseCase{create: create, repo: repo, cache: cache, idempotency: idempotency, log: log}
}

// Create crea la venta. Con idempotencyKey, una repetición devuelve la venta ya creada
// (replayed=true) y una repetición concurrente devuelve domain.ErrDuplicateRequest.
func (uc *SaleUseCase) Create(ctx context.Context, idempotencyKey string, in dto.CreateSaleRequest) (resp *dto.SaleResponse, replayed bool, err error) {
	if idempotencyKey == "" || uc.idempotency == nil {
		sale, err := uc.create.CreateSale(ctx, in)
		if err != nil {
			return nil, false, err
		}
		return uc.toSaleResponse(ctx, sale), false, nil
	}

	saleID, fresh, err := uc.idempotency.Reserve(ctx, idempotencyKey)
	if err != nil {
		return nil, false, &domain.PersistenceError{Cause: err}
	}
	if !fresh {
		if saleID == "" {
			return nil, false, domain.ErrDuplicateRequest
		}
		existing, err := uc.repo.FindByID(ctx, saleID)
		if err != nil {
			return nil, false, &domain.PersistenceError{Cause: err}
		}
		return uc.toSaleResponse(ctx, existing), true, nil
	}

	sale, err := uc.create.CreateSale(ctx, in)
	if err != nil {
		if relErr := uc.idempotency.Release(context.WithoutCancel(ctx), idempotencyKey); relErr != nil {
			uc.log.Warn().Err(relErr).Str("idempotency_key", idempotencyKey).Msg("liberar clave de idempotencia")
		}
		return nil, false, err
	}
	if err := uc.idempotency.Complete(context.WithoutCancel(ctx), idempotencyKey, sale.ID); err != nil {
		// La venta ya existe; solo se pierde la protección ante repeticiones.
		uc.log.Warn().Err(err).Str("idempotency_key", idempotencyKey).Str("sale_id", sale.ID).
			Msg("completar clave de idempotencia")
	}
	return uc.toSaleResponse(ctx, sale), false, nil
}

// Update siempre falla: ErrAlreadyExists si la venta existe, ErrSaleNotFound si no.
func (uc *SaleUseCase) Update(ctx context.Context, id string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	_, err := uc.create.UpdateSale(ctx, id, in)
	return nil, err
}

// GetByID obtiene una venta con sus productos.
func (uc *SaleUseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSaleNotFound
		}
		return nil, &domain.PersistenceError{Cause: err}
	}
	return uc.toSaleResponse(ctx, sale), nil
}

// List lista ventas con paginación.
func (uc *SaleUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	res, err := uc.repo.List(ctx, repository.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, &domain.PersistenceError{Cause: err}
	}
	items := make([]dto.SaleResponse, 0, len(res.Items))
	for _, s := range res.Items {
		items = append(items, *uc.toSaleResponse(ctx, s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: res.Total},
	}, nil
}

// Delete elimina una venta. No devuelve stock: es una operación administrativa.
func (uc *SaleUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrSaleNotFound
		}
		return &domain.PersistenceError{Cause: err}
	}
	return nil
}

// toSaleResponse arma la respuesta; el producto de cada línea sale del caché y, si no se puede
// leer, la línea va sin producto.
func (uc *SaleUseCase) toSaleResponse(ctx context.Context, s *entity.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID: it.ProductID,
			Product:   uc.lookupProduct(ctx, it.ProductID),
			Price:     it.Price,
			Quantity:  it.Quantity,
			SubTotal:  it.SubTotal(),
		})
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		Date:          s.Date,
		CustomerID:    s.CustomerID,
		Items:         items,
		IvaPercent:    s.IvaPercent,
		PaymentMethod: s.PaymentMethod.String(),
		Total:         s.Total(),
		TotalWithIva:  s.TotalWithIva(),
	}
}

func (uc *SaleUseCase) lookupProduct(ctx context.Context, id int64) *dto.ProductResponse {
	if uc.cache == nil {
		return nil
	}
	p, err := uc.cache.Get(ctx, id)
	if err != nil {
		uc.log.Debug().Err(err).Int64("product_id", id).Msg("producto no disponible para la respuesta")
		return nil
	}
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
