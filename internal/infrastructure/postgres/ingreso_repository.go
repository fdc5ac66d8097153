package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.IngresoRepository = (*IngresoRepo)(nil)

var ingresoColumns = []string{
	"id", "receipt_number", "product_id", "supplier", "purchase_order", "invoice",
	"quantity_requested", "quantity_received", "unit_cost", "total_cost", "batch", "expiry_date",
	"location", "document", "notes", "condition_state", "active", "received_at",
	"created_at", "created_by", "created_by_name", "validated_by", "validated_by_name",
	"updated_at", "updated_by", "updated_by_name",
}

// ingresoSelect columnas de lectura; condition_state se expone como condition.
func ingresoSelect() []string {
	cols := make([]string, len(ingresoColumns))
	for i, c := range ingresoColumns {
		if c == "condition_state" {
			c = "condition_state AS condition"
		}
		cols[i] = c
	}
	return cols
}

// IngresoRepo ingresos de mercancía sobre PostgreSQL.
type IngresoRepo struct {
	q Querier
}

// NewIngresoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngresoRepository(q Querier) *IngresoRepo {
	return &IngresoRepo{q: q}
}

// Create inserta el ingreso.
func (r *IngresoRepo) Create(ctx context.Context, in *entity.Ingreso) error {
	sql, args, err := builder().
		Insert("ingresos").
		Columns(ingresoColumns...).
		Values(
			in.ID, in.ReceiptNumber, in.ProductID, in.Supplier, in.PurchaseOrder, in.Invoice,
			in.QuantityRequested, in.QuantityReceived, in.UnitCost, in.TotalCost, in.Batch, in.ExpiryDate,
			in.Location, in.Document, in.Notes, int16(in.Condition), in.Active, in.ReceivedAt,
			in.CreatedAt, in.CreatedBy, in.CreatedByName, in.ValidatedBy, in.ValidatedByName,
			in.UpdatedAt, in.UpdatedBy, in.UpdatedByName,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert ingreso: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return wrapErr("insert ingreso", err)
	}
	return nil
}

// GetByID obtiene un ingreso activo por id.
func (r *IngresoRepo) GetByID(ctx context.Context, id int64) (*entity.Ingreso, error) {
	sql, args, err := builder().Select(ingresoSelect()...).From("ingresos").
		Where(squirrel.Eq{"id": id, "active": true}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select ingreso: %w", err)
	}
	var in entity.Ingreso
	if err := pgxscan.Get(ctx, r.q, &in, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("ingreso %d: %w", id, domain.ErrNotFound)
		}
		return nil, wrapErr("get ingreso", err)
	}
	return &in, nil
}

// Save actualiza el ingreso con una transición condicional: solo afecta la fila si la condición
// sigue siendo from y nadie la tocó desde prevUpdatedAt. Si dos validaciones compiten, la segunda
// espera el bloqueo de fila, reevalúa el WHERE y no actualiza nada.
func (r *IngresoRepo) Save(ctx context.Context, in *entity.Ingreso, from entity.Condition, prevUpdatedAt time.Time) error {
	sql, args, err := builder().
		Update("ingresos").
		SetMap(map[string]any{
			"supplier":           in.Supplier,
			"purchase_order":     in.PurchaseOrder,
			"invoice":            in.Invoice,
			"quantity_requested": in.QuantityRequested,
			"quantity_received":  in.QuantityReceived,
			"unit_cost":          in.UnitCost,
			"total_cost":         in.TotalCost,
			"batch":              in.Batch,
			"expiry_date":        in.ExpiryDate,
			"location":           in.Location,
			"document":           in.Document,
			"notes":              in.Notes,
			"condition_state":    int16(in.Condition),
			"received_at":        in.ReceivedAt,
			"validated_by":       in.ValidatedBy,
			"validated_by_name":  in.ValidatedByName,
			"updated_at":         in.UpdatedAt,
			"updated_by":         in.UpdatedBy,
			"updated_by_name":    in.UpdatedByName,
		}).
		Where(squirrel.Eq{"id": in.ID, "condition_state": int16(from), "updated_at": prevUpdatedAt, "active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update ingreso: %w", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr("update ingreso", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := r.GetByID(ctx, in.ID)
	if err != nil {
		return err
	}
	if current.Condition != from {
		return fmt.Errorf("ingreso %s en estado %s: %w", current.ReceiptNumber, current.Condition, domain.ErrInvalidState)
	}
	return fmt.Errorf("ingreso %s: %w", current.ReceiptNumber, domain.ErrConcurrentUpdate)
}

// List ingresos filtrados y paginados.
func (r *IngresoRepo) List(ctx context.Context, f repository.IngresoFilter) ([]*entity.Ingreso, int64, error) {
	where := squirrel.And{squirrel.Eq{"active": true}}
	if f.Condition != nil {
		where = append(where, squirrel.Eq{"condition_state": int16(*f.Condition)})
	}
	if f.ProductID != "" {
		where = append(where, squirrel.Eq{"product_id": f.ProductID})
	}
	if f.ReceiptNumber != "" {
		where = append(where, squirrel.ILike{"receipt_number": likePattern(f.ReceiptNumber)})
	}
	if f.Supplier != "" {
		where = append(where, squirrel.ILike{"supplier": likePattern(f.Supplier)})
	}
	if f.Invoice != "" {
		where = append(where, squirrel.ILike{"invoice": likePattern(f.Invoice)})
	}
	if f.ProductCode != "" {
		where = append(where, squirrel.Expr("product_id IN (SELECT id FROM productos WHERE code ILIKE ?)", likePattern(f.ProductCode)))
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"created_at": *f.To})
	}

	countSQL, countArgs, err := builder().Select("COUNT(*)").From("ingresos").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count ingresos: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count ingresos", err)
	}

	order := []string{"created_at DESC", "id DESC"}
	if f.OldestFirst {
		order = []string{"created_at ASC", "id ASC"}
	}
	q := builder().Select(ingresoSelect()...).From("ingresos").Where(where).OrderBy(order...)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list ingresos: %w", err)
	}
	var items []*entity.Ingreso
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, 0, wrapErr("list ingresos", err)
	}
	return items, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern busca sub como subcadena literal: escapa los comodines de LIKE.
func likePattern(sub string) string {
	return "%" + likeEscaper.Replace(sub) + "%"
}
