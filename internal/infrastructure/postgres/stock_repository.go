package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `product_id, quantity_available, quantity_reserved, quantity_total, average_cost,
	inventory_value, batch, expiry_date, location, last_movement_at, active, alert, alert_kind,
	version, created_at, updated_at, updated_by, updated_by_name`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el registro de stock de un producto.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := pgxscan.Get(ctx, r.q, &rec, `SELECT `+stockColumns+` FROM stock WHERE product_id = $1`, productID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("stock de %s: %w", productID, domain.ErrNotFound)
		}
		return nil, wrapErr("get stock", err)
	}
	return &rec, nil
}

// CreateIfMissing inserta el registro en cero; si ya existe no hace nada.
func (r *StockRepo) CreateIfMissing(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock (product_id, quantity_available, quantity_reserved, quantity_total, average_cost,
			inventory_value, batch, location, active, alert, alert_kind, version, created_at, updated_at)
		VALUES ($1, 0, 0, 0, 0, 0, '', $2, TRUE, FALSE, '', 0, $3, $3)
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, rec.ProductID, rec.Location, rec.CreatedAt); err != nil {
		return wrapErr("create stock", err)
	}
	return nil
}

// CompareAndSwap actualiza el registro solo si la versión no cambió.
func (r *StockRepo) CompareAndSwap(ctx context.Context, rec *entity.StockRecord, expectedVersion int64) error {
	sql, args, err := builder().
		Update("stock").
		SetMap(map[string]any{
			"quantity_available": rec.QuantityAvailable,
			"quantity_reserved":  rec.QuantityReserved,
			"quantity_total":     rec.QuantityTotal,
			"average_cost":       rec.AverageCost,
			"inventory_value":    rec.InventoryValue,
			"batch":              rec.Batch,
			"expiry_date":        rec.ExpiryDate,
			"location":           rec.Location,
			"last_movement_at":   rec.LastMovementAt,
			"active":             rec.Active,
			"alert":              rec.Alert,
			"alert_kind":         string(rec.AlertKind),
			"updated_at":         rec.UpdatedAt,
			"updated_by":         rec.UpdatedBy,
			"updated_by_name":    rec.UpdatedByName,
		}).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"product_id": rec.ProductID, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update stock: %w", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr("update stock", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock WHERE product_id = $1)`, rec.ProductID).Scan(&exists); err != nil {
		return wrapErr("check stock", err)
	}
	if !exists {
		return fmt.Errorf("stock de %s: %w", rec.ProductID, domain.ErrNotFound)
	}
	return fmt.Errorf("stock de %s versión %d: %w", rec.ProductID, expectedVersion, domain.ErrConcurrentUpdate)
}

// stockViewRow fila del listado: columnas del stock más las del producto con prefijo product_.
type stockViewRow struct {
	entity.StockRecord
	ProductCode            string          `db:"product_code"`
	ProductName            string          `db:"product_name"`
	ProductActive          bool            `db:"product_active"`
	ProductStockMinimo     decimal.Decimal `db:"product_stock_minimo"`
	ProductStockMaximo     decimal.Decimal `db:"product_stock_maximo"`
	ProductStockCritico    decimal.Decimal `db:"product_stock_critico"`
	ProductDefaultUnitCost decimal.Decimal `db:"product_default_unit_cost"`
	ProductLocation        string          `db:"product_location"`
}

func (row *stockViewRow) view() repository.StockView {
	rec := row.StockRecord
	return repository.StockView{
		Record: &rec,
		Product: &entity.Product{
			ID:              rec.ProductID,
			Code:            row.ProductCode,
			Name:            row.ProductName,
			Active:          row.ProductActive,
			StockMinimo:     row.ProductStockMinimo,
			StockMaximo:     row.ProductStockMaximo,
			StockCritico:    row.ProductStockCritico,
			DefaultUnitCost: row.ProductDefaultUnitCost,
			Location:        row.ProductLocation,
		},
	}
}

// qualified antepone alias a cada columna de una lista separada por comas.
func qualified(alias, columns string) []string {
	parts := strings.Split(columns, ",")
	out := make([]string, len(parts))
	for i, c := range parts {
		out[i] = alias + "." + strings.TrimSpace(c)
	}
	return out
}

// List stock activo de productos activos, ordenado por nombre de producto.
func (r *StockRepo) List(ctx context.Context, f repository.StockFilter) ([]repository.StockView, int64, error) {
	where := squirrel.And{squirrel.Expr("s.active"), squirrel.Expr("p.active")}
	if f.Low {
		where = append(where, squirrel.Expr("s.quantity_total <= p.stock_minimo"))
	}
	if f.Critical {
		where = append(where, squirrel.Expr("s.quantity_total <= p.stock_critico"))
	}
	from := builder().Select().From("stock s").Join("productos p ON p.id = s.product_id").Where(where)

	countSQL, countArgs, err := from.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count stock: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count stock", err)
	}

	cols := append(qualified("s", stockColumns),
		"p.code AS product_code", "p.name AS product_name", "p.active AS product_active",
		"p.stock_minimo AS product_stock_minimo", "p.stock_maximo AS product_stock_maximo",
		"p.stock_critico AS product_stock_critico", "p.default_unit_cost AS product_default_unit_cost",
		"p.location AS product_location")
	q := from.Columns(cols...).OrderBy("p.name", "s.product_id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list stock: %w", err)
	}
	var rows []*stockViewRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, wrapErr("list stock", err)
	}
	out := make([]repository.StockView, len(rows))
	for i, row := range rows {
		out[i] = row.view()
	}
	return out, total, nil
}

// ListAlerts registros activos con alerta.
func (r *StockRepo) ListAlerts(ctx context.Context) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	query := `SELECT ` + stockColumns + ` FROM stock WHERE active AND alert ORDER BY product_id`
	if err := pgxscan.Select(ctx, r.q, &out, query); err != nil {
		return nil, wrapErr("list stock alerts", err)
	}
	return out, nil
}

// ListProductIDs ids de todos los productos con registro de stock.
func (r *StockRepo) ListProductIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := pgxscan.Select(ctx, r.q, &ids, `SELECT product_id FROM stock ORDER BY product_id`); err != nil {
		return nil, wrapErr("list stock ids", err)
	}
	return ids, nil
}
