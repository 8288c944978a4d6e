package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en las tablas sales + sale_items. La venta y sus líneas se escriben en una
// sola transacción.
type SaleRepo struct {
	q  Querier
	tx *TxRunner
}

// NewSaleRepository construye el adaptador sobre el pool.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepo {
	return &SaleRepo{q: pool, tx: NewTxRunner(pool)}
}

// Save inserta la venta. Una venta con ID ya persistido devuelve domain.ErrAlreadyExists
// sin tocar la fila existente.
func (r *SaleRepo) Save(ctx context.Context, sale *entity.Sale) (*entity.Sale, error) {
	saved := sale.Clone()
	if saved.IsNew() {
		saved.ID = uuid.New().String()
	} else if _, err := uuid.Parse(saved.ID); err != nil {
		return nil, fmt.Errorf("id de venta inválido %q: %w", saved.ID, err)
	}

	err := r.tx.Run(ctx, func(q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO sales (id, date, customer_id, iva_percent, payment_method)
			VALUES ($1, $2, $3, $4, $5)`,
			saved.ID, saved.Date, saved.CustomerID, saved.IvaPercent, string(saved.PaymentMethod),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return fmt.Errorf("insert sale: %w", err)
		}
		for i, it := range saved.Items {
			_, err := q.Exec(ctx, `
				INSERT INTO sale_items (sale_id, position, product_id, price, quantity)
				VALUES ($1, $2, $3, $4, $5)`,
				saved.ID, i, it.ProductID, it.Price, it.Quantity,
			)
			if err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// FindByID obtiene una venta con sus líneas en el orden original.
func (r *SaleRepo) FindByID(ctx context.Context, id string) (*entity.Sale, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var s entity.Sale
	var pm string
	err := r.q.QueryRow(ctx, `
		SELECT id::text, date, customer_id, iva_percent, payment_method
		FROM sales WHERE id = $1`, id,
	).Scan(&s.ID, &s.Date, &s.CustomerID, &s.IvaPercent, &pm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.PaymentMethod = entity.PaymentMethod(pm)

	items, err := r.loadItems(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return &s, nil
}

// Delete elimina la venta; las líneas se borran en cascada.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ventas de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, page repository.Page) (repository.PageResult[*entity.Sale], error) {
	var out repository.PageResult[*entity.Sale]
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM sales`).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count sales: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id::text, date, customer_id, iva_percent, payment_method
		FROM sales ORDER BY date DESC, id LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return out, fmt.Errorf("list sales: %w", err)
	}
	ids := make([]string, 0, page.Limit)
	for rows.Next() {
		var s entity.Sale
		var pm string
		if err := rows.Scan(&s.ID, &s.Date, &s.CustomerID, &s.IvaPercent, &pm); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan sale: %w", err)
		}
		s.PaymentMethod = entity.PaymentMethod(pm)
		out.Items = append(out.Items, &s)
		ids = append(ids, s.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("list sales: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return out, err
	}
	for _, s := range out.Items {
		s.Items = items[s.ID]
	}
	return out, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleIDs []string) (map[string][]entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT sale_id::text, product_id, price, quantity
		FROM sale_items WHERE sale_id::text = ANY($1)
		ORDER BY sale_id, position`, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.SaleItem, len(saleIDs))
	for rows.Next() {
		var saleID string
		var it entity.SaleItem
		if err := rows.Scan(&saleID, &it.ProductID, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out[saleID] = append(out[saleID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	return out, nil
}
