package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

// Config parámetros del orquestador.
type Config struct {
	// CommitTimeout tiempo máximo para descontar stock, guardar y, si hace falta, compensar.
	// Esa fase no hereda la cancelación del llamador.
	CommitTimeout time.Duration
	// ValidateCustomerCI exige que customerId sea una cédula ecuatoriana válida.
	ValidateCustomerCI bool
}

// CreateSaleUseCase orquesta la creación de una venta reservando stock en el servicio de productos.
//
// No hay transacción entre servicios: el stock se lee fresco del servicio remoto (nunca del
// caché), se valida para todos los productos antes de tocar nada, se descuenta producto por
// producto y cada descuento queda en una bitácora. Si un descuento o el guardado fallan, la
// bitácora se recorre al revés devolviendo el stock (compensación).
//
// El locker serializa las ventas concurrentes sobre el mismo producto. Con el locker "none" la
// secuencia leer-decidir-escribir queda expuesta a la carrera entre ventas simultáneas; tampoco se
// protege contra un PUT directo al servicio de productos hecho por otro cliente.
type CreateSaleUseCase struct {
	sales    repository.SaleRepository
	products ports.ProductClient
	cache    ProductCache
	locker   StockLocker
	log      *logger.Logger
	cfg      Config
	now      func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	sales repository.SaleRepository,
	products ports.ProductClient,
	cache ProductCache,
	locker StockLocker,
	log *logger.Logger,
	cfg Config,
) *CreateSaleUseCase {
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = 30 * time.Second
	}
	return &CreateSaleUseCase{
		sales:    sales,
		products: products,
		cache:    cache,
		locker:   locker,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// CreateSale valida la solicitud, reserva el stock y persiste la venta una sola vez.
// Errores: *domain.ValidationError, *domain.ProductNotFoundError, *domain.InsufficientStockError,
// *domain.UpstreamError, *domain.PersistenceError.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*entity.Sale, error) {
	cmd, err := parseRequest(in, uc.cfg.ValidateCustomerCI)
	if err != nil {
		return nil, err
	}
	if cmd.merged > 0 {
		uc.log.Debug().Int("merged", cmd.merged).Str("customer_id", cmd.CustomerID).
			Msg("productos repetidos combinados sumando cantidades")
	}

	unlock, err := uc.locker.Lock(ctx, cmd.productIDs())
	if err != nil {
		return nil, &domain.UpstreamError{Cause: fmt.Errorf("bloquear stock: %w", err)}
	}
	defer unlock()

	products, err := uc.fetchFresh(ctx, cmd.Lines)
	if err != nil {
		return nil, err
	}

	for _, line := range cmd.Lines {
		p := products[line.ProductID]
		if p.Stock < line.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: p.ID,
				Available: p.Stock,
				Requested: line.Quantity,
			}
		}
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.CommitTimeout)
	defer cancel()
	return uc.reserveAndSave(commitCtx, cmd, products)
}

// UpdateSale no existe como operación: una venta creada no se modifica.
// Devuelve domain.ErrAlreadyExists si la venta existe y domain.ErrSaleNotFound si no.
func (uc *CreateSaleUseCase) UpdateSale(ctx context.Context, id string, _ dto.CreateSaleRequest) (*entity.Sale, error) {
	_, err := uc.sales.FindByID(ctx, id)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyExists
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.ErrSaleNotFound
	default:
		return nil, &domain.PersistenceError{Cause: err}
	}
}

// fetchFresh lee cada producto directo del servicio remoto, sin pasar por el caché,
// y deja la lectura en el caché para las respuestas.
func (uc *CreateSaleUseCase) fetchFresh(ctx context.Context, lines []requestedLine) (map[int64]*entity.Product, error) {
	products := make(map[int64]*entity.Product, len(lines))
	for _, line := range lines {
		p, err := uc.products.Fetch(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrRemoteNotFound) {
				uc.cache.Put(line.ProductID, nil)
				return nil, &domain.ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, &domain.UpstreamError{ProductID: line.ProductID, Cause: err}
		}
		if p == nil {
			return nil, &domain.ProductNotFoundError{ProductID: line.ProductID}
		}
		cached := *p
		uc.cache.Put(p.ID, &cached)
		products[line.ProductID] = p
	}
	return products, nil
}

func (uc *CreateSaleUseCase) reserveAndSave(ctx context.Context, cmd *saleCommand, products map[int64]*entity.Product) (*entity.Sale, error) {
	rlog := newReservationLog(uuid.New().String())
	sale := &entity.Sale{
		CustomerID:    cmd.CustomerID,
		IvaPercent:    cmd.IvaPercent,
		PaymentMethod: cmd.PaymentMethod,
		Items:         make([]entity.SaleItem, 0, len(cmd.Lines)),
	}

	for _, line := range cmd.Lines {
		p := products[line.ProductID]
		newStock := p.Stock - line.Quantity
		if err := uc.products.UpdateStock(ctx, p, newStock); err != nil {
			uc.log.Error().Err(err).Str("attempt_id", rlog.attemptID).Int64("product_id", p.ID).
				Msg("error al actualizar el stock del producto")
			uc.compensate(ctx, rlog)
			if errors.Is(err, domain.ErrRemoteNotFound) {
				return nil, &domain.ProductNotFoundError{ProductID: p.ID}
			}
			return nil, &domain.UpstreamError{ProductID: p.ID, Cause: err}
		}
		rlog.record(p.ID, line.Quantity, p.Stock, newStock, uc.now())

		updated := *p
		updated.Stock = newStock
		uc.cache.Put(p.ID, &updated)

		sale.Items = append(sale.Items, entity.SaleItem{
			ProductID: p.ID,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
	}

	sale.Date = uc.now()
	saved, err := uc.sales.Save(ctx, sale)
	if err != nil {
		uc.log.Error().Err(err).Str("attempt_id", rlog.attemptID).Msg("guardar venta")
		uc.compensate(ctx, rlog)
		return nil, &domain.PersistenceError{Cause: err}
	}

	uc.log.Info().Str("sale_id", saved.ID).Str("attempt_id", rlog.attemptID).
		Int("items", len(saved.Items)).Str("total", saved.Total().StringFixed(2)).
		Msg("venta creada")
	return saved, nil
}

// compensate devuelve el stock descontado, del último descuento al primero. Relee el producto
// y suma la cantidad en lugar de restaurar el valor anterior, para no pisar cambios ajenos.
// Los fallos se registran; el error que ve el llamador sigue siendo el original.
func (uc *CreateSaleUseCase) compensate(ctx context.Context, rlog *reservationLog) {
	if rlog.empty() {
		return
	}
	var failed []error
	for _, m := range rlog.reversed() {
		uc.cache.Invalidate(m.ProductID)
		current, err := uc.products.Fetch(ctx, m.ProductID)
		if err == nil && current == nil {
			err = domain.ErrRemoteNotFound
		}
		if err == nil {
			err = uc.products.UpdateStock(ctx, current, current.Stock+m.Quantity)
		}
		if err != nil {
			failed = append(failed, fmt.Errorf("producto %d: %w", m.ProductID, err))
			uc.log.Error().Err(err).Str("attempt_id", m.AttemptID).Int64("product_id", m.ProductID).
				Int("quantity", m.Quantity).Msg("CRÍTICO: no se pudo compensar el stock")
			continue
		}
		uc.log.Warn().Str("attempt_id", m.AttemptID).Int64("product_id", m.ProductID).
			Int("quantity", m.Quantity).Str("type", entity.MovementTypeCompensation).
			Msg("stock compensado")
	}
	if len(failed) > 0 {
		uc.log.Error().Err(errors.Join(failed...)).Str("attempt_id", rlog.attemptID).
			Msg("compensación incompleta: revisar stock manualmente")
	}
}
