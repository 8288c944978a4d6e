package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Save inserta un producto nuevo; el ID lo asigna la secuencia.
func (r *ProductRepo) Save(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if !product.IsNew() {
		return nil, domain.ErrAlreadyExists
	}
	query := `
		INSERT INTO products (name, price, description, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	saved := *product
	err := r.q.QueryRow(ctx, query, product.Name, product.Price, product.Description, product.Stock).Scan(&saved.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &saved, nil
}

// FindByID obtiene un producto por ID.
func (r *ProductRepo) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := `SELECT id, name, price, description, stock FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update sobrescribe todos los campos del producto (PUT completo).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, price = $3, description = $4, stock = $5, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, product.ID, product.Name, product.Price, product.Description, product.Stock)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos por ID ascendente con paginación.
func (r *ProductRepo) List(ctx context.Context, page repository.Page) (repository.PageResult[*entity.Product], error) {
	var out repository.PageResult[*entity.Product]
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count products: %w", err)
	}

	query := `
		SELECT id, name, price, description, stock
		FROM products ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return out, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Stock); err != nil {
			return out, fmt.Errorf("scan product: %w", err)
		}
		out.Items = append(out.Items, &p)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}
