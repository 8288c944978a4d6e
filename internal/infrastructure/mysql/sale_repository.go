package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// errDuplicateEntry código de MySQL para clave duplicada.
const errDuplicateEntry = 1062

// Schema tablas del almacén de ventas en MySQL.
const Schema = `
CREATE TABLE IF NOT EXISTS sales (
    id             CHAR(36)      NOT NULL PRIMARY KEY,
    date           DATETIME(6)   NOT NULL,
    customer_id    VARCHAR(20)   NOT NULL,
    iva_percent    DECIMAL(5,2)  NOT NULL,
    payment_method VARCHAR(20)   NOT NULL,
    INDEX idx_sales_date (date)
);
CREATE TABLE IF NOT EXISTS sale_items (
    sale_id    CHAR(36)       NOT NULL,
    position   INT            NOT NULL,
    product_id BIGINT         NOT NULL,
    price      DECIMAL(12,2)  NOT NULL,
    quantity   INT            NOT NULL,
    PRIMARY KEY (sale_id, position),
    UNIQUE KEY uq_sale_product (sale_id, product_id),
    CONSTRAINT fk_sale_items_sale FOREIGN KEY (sale_id) REFERENCES sales (id) ON DELETE CASCADE
);`

type saleRow struct {
	ID            string          `db:"id"`
	Date          time.Time       `db:"date"`
	CustomerID    string          `db:"customer_id"`
	IvaPercent    decimal.Decimal `db:"iva_percent"`
	PaymentMethod string          `db:"payment_method"`
}

type saleItemRow struct {
	SaleID    string          `db:"sale_id"`
	Position  int             `db:"position"`
	ProductID int64           `db:"product_id"`
	Price     decimal.Decimal `db:"price"`
	Quantity  int             `db:"quantity"`
}

// SaleRepo almacén de ventas sobre MySQL (sqlx + go-sql-driver/mysql).
type SaleRepo struct {
	db *sqlx.DB
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(db *sqlx.DB) *SaleRepo {
	return &SaleRepo{db: db}
}

// Connect abre la conexión y verifica con ping. El DSN debe incluir parseTime=true.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("conectar mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate crea las tablas si no existen.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range splitStatements(Schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrar mysql: %w", err)
		}
	}
	return nil
}

// Save inserta la venta y sus líneas en una transacción.
func (r *SaleRepo) Save(ctx context.Context, sale *entity.Sale) (*entity.Sale, error) {
	saved := sale.Clone()
	if saved.IsNew() {
		saved.ID = uuid.New().String()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO sales (id, date, customer_id, iva_percent, payment_method)
		VALUES (:id, :date, :customer_id, :iva_percent, :payment_method)`,
		saleRow{
			ID:            saved.ID,
			Date:          saved.Date.UTC(),
			CustomerID:    saved.CustomerID,
			IvaPercent:    saved.IvaPercent,
			PaymentMethod: string(saved.PaymentMethod),
		})
	if err != nil {
		if isDuplicate(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	if len(saved.Items) > 0 {
		rows := make([]saleItemRow, len(saved.Items))
		for i, it := range saved.Items {
			rows[i] = saleItemRow{SaleID: saved.ID, Position: i, ProductID: it.ProductID, Price: it.Price, Quantity: it.Quantity}
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO sale_items (sale_id, position, product_id, price, quantity)
			VALUES (:sale_id, :position, :product_id, :price, :quantity)`, rows)
		if err != nil {
			return nil, fmt.Errorf("insert sale items: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// FindByID obtiene la venta con sus líneas en el orden original.
func (r *SaleRepo) FindByID(ctx context.Context, id string) (*entity.Sale, error) {
	var row saleRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, date, customer_id, iva_percent, payment_method FROM sales WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.loadItems(ctx, []string{row.ID})
	if err != nil {
		return nil, err
	}
	return toSale(row, items[row.ID]), nil
}

// Delete elimina la venta; las líneas se borran en cascada.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ventas de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, page repository.Page) (repository.PageResult[*entity.Sale], error) {
	var out repository.PageResult[*entity.Sale]
	if err := r.db.GetContext(ctx, &out.Total, `SELECT COUNT(*) FROM sales`); err != nil {
		return out, fmt.Errorf("count sales: %w", err)
	}

	var rows []saleRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, date, customer_id, iva_percent, payment_method
		FROM sales ORDER BY date DESC, id LIMIT ? OFFSET ?`, page.Limit, page.Offset)
	if err != nil {
		return out, fmt.Errorf("list sales: %w", err)
	}
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return out, err
	}
	out.Items = make([]*entity.Sale, 0, len(rows))
	for _, row := range rows {
		out.Items = append(out.Items, toSale(row, items[row.ID]))
	}
	return out, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleIDs []string) (map[string][]entity.SaleItem, error) {
	query, args, err := sqlx.In(`
		SELECT sale_id, position, product_id, price, quantity
		FROM sale_items WHERE sale_id IN (?) ORDER BY sale_id, position`, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	var rows []saleItemRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	out := make(map[string][]entity.SaleItem, len(saleIDs))
	for _, row := range rows {
		out[row.SaleID] = append(out[row.SaleID], entity.SaleItem{
			ProductID: row.ProductID,
			Price:     row.Price,
			Quantity:  row.Quantity,
		})
	}
	return out, nil
}

func toSale(row saleRow, items []entity.SaleItem) *entity.Sale {
	return &entity.Sale{
		ID:            row.ID,
		Date:          row.Date,
		CustomerID:    row.CustomerID,
		Items:         items,
		IvaPercent:    row.IvaPercent,
		PaymentMethod: entity.PaymentMethod(row.PaymentMethod),
	}
}

func isDuplicate(err error) bool {
	var myErr *gomysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
