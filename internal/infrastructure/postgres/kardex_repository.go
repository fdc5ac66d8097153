package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

var kardexColumns = []string{
	"id", "movement_number", "transaction_id", "product_id", "operation_kind", "movement_kind",
	"quantity_before", "quantity_delta", "quantity_after", "unit_cost", "total_cost",
	"reason", "reference_document", "document_number", "ingreso_id", "request_id", "work_order_number",
	"batch", "location", "moved_at", "actor_id", "actor_name", "authorized_by_id", "authorized_by_name",
	"created_at",
}

// KardexRepo kardex sobre PostgreSQL. La tabla rechaza UPDATE y DELETE con un trigger.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador del kardex. Pasar pool o tx (Querier).
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

// Append inserta un movimiento.
func (r *KardexRepo) Append(ctx context.Context, e *entity.KardexEntry) error {
	sql, args, err := builder().
		Insert("kardex").
		Columns(kardexColumns...).
		Values(
			e.ID, e.MovementNumber, e.TransactionID, e.ProductID, string(e.OperationKind), string(e.MovementKind),
			e.QuantityBefore, e.QuantityDelta, e.QuantityAfter, e.UnitCost, e.TotalCost,
			e.Reason, e.ReferenceDocument, e.DocumentNumber, e.IngresoID, e.RequestID, e.WorkOrderNumber,
			e.Batch, e.Location, e.MovedAt, e.ActorID, e.ActorName, e.AuthorizedByID, e.AuthorizedByName,
			e.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert kardex: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return wrapErr("insert kardex", err)
	}
	return nil
}

// GetByTransactionID busca el movimiento registrado con una llave de operación.
func (r *KardexRepo) GetByTransactionID(ctx context.Context, transactionID string) (*entity.KardexEntry, error) {
	return r.getOne(ctx, squirrel.Eq{"transaction_id": transactionID})
}

// GetByMovementNumber busca un movimiento por su número KDX.
func (r *KardexRepo) GetByMovementNumber(ctx context.Context, number string) (*entity.KardexEntry, error) {
	return r.getOne(ctx, squirrel.Eq{"movement_number": number})
}

func (r *KardexRepo) getOne(ctx context.Context, where squirrel.Eq) (*entity.KardexEntry, error) {
	sql, args, err := builder().Select(kardexColumns...).From("kardex").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select kardex: %w", err)
	}
	var e entity.KardexEntry
	if err := pgxscan.Get(ctx, r.q, &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("movimiento: %w", domain.ErrNotFound)
		}
		return nil, wrapErr("get kardex", err)
	}
	return &e, nil
}

// List movimientos filtrados y paginados, más recientes primero.
func (r *KardexRepo) List(ctx context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, int64, error) {
	where := kardexWhere(f)

	countSQL, countArgs, err := builder().Select("COUNT(*)").From("kardex").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count kardex: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count kardex", err)
	}

	q := builder().Select(kardexColumns...).From("kardex").Where(where).OrderBy("moved_at DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list kardex: %w", err)
	}
	var items []*entity.KardexEntry
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, 0, wrapErr("list kardex", err)
	}
	return items, total, nil
}

func kardexWhere(f repository.KardexFilter) squirrel.And {
	where := squirrel.And{}
	if f.ProductID != "" {
		where = append(where, squirrel.Eq{"product_id": f.ProductID})
	}
	if f.OperationKind != "" {
		where = append(where, squirrel.Eq{"operation_kind": string(f.OperationKind)})
	}
	if f.MovementKind != "" {
		where = append(where, squirrel.Eq{"movement_kind": string(f.MovementKind)})
	}
	if f.IngresoID != nil {
		where = append(where, squirrel.Eq{"ingreso_id": *f.IngresoID})
	}
	if f.RequestID != "" {
		where = append(where, squirrel.Eq{"request_id": f.RequestID})
	}
	if f.WorkOrderNumber != "" {
		where = append(where, squirrel.Eq{"work_order_number": f.WorkOrderNumber})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"moved_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"moved_at": *f.To})
	}
	return where
}

// ListChain movimientos del producto en orden de inserción (id asc).
func (r *KardexRepo) ListChain(ctx context.Context, productID string) ([]*entity.KardexEntry, error) {
	sql, args, err := builder().Select(kardexColumns...).From("kardex").
		Where(squirrel.Eq{"product_id": productID}).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build chain kardex: %w", err)
	}
	var items []*entity.KardexEntry
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, wrapErr("chain kardex", err)
	}
	return items, nil
}

type kardexTotalRow struct {
	ProductID     string          `db:"product_id"`
	OperationKind string          `db:"operation_kind"`
	Quantity      decimal.Decimal `db:"quantity"`
	Movements     int64           `db:"movements"`
}

// Totals suma las cantidades por producto y tipo de operación.
func (r *KardexRepo) Totals(ctx context.Context, productID string) ([]repository.KardexTotals, error) {
	q := builder().
		Select("product_id", "operation_kind", "SUM(quantity_delta) AS quantity", "COUNT(*) AS movements").
		From("kardex").
		GroupBy("product_id", "operation_kind").
		OrderBy("product_id")
	if productID != "" {
		q = q.Where(squirrel.Eq{"product_id": productID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build totals kardex: %w", err)
	}
	var rows []kardexTotalRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, wrapErr("totals kardex", err)
	}

	var out []repository.KardexTotals
	for _, row := range rows {
		if len(out) == 0 || out[len(out)-1].ProductID != row.ProductID {
			out = append(out, repository.KardexTotals{
				ProductID: row.ProductID,
				ByKind:    map[entity.OperationKind]decimal.Decimal{},
			})
		}
		t := &out[len(out)-1]
		t.ByKind[entity.OperationKind(row.OperationKind)] = row.Quantity
		t.Movements += row.Movements
	}
	return out, nil
}
