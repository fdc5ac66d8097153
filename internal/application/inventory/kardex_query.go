package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// RelatedMovements cantidad de movimientos relacionados que devuelve la trazabilidad.
const RelatedMovements = 5

// KardexQuery filtros del listado del kardex expuestos al llamador.
type KardexQuery struct {
	ProductID       string
	OperationKind   string
	MovementKind    string
	IngresoID       *int64
	RequestID       string
	WorkOrderNumber string
	From            *time.Time
	To              *time.Time // se extiende hasta el final del día
	Page            int
	Limit           int
}

// KardexPage página del kardex.
type KardexPage struct {
	Items []*entity.KardexEntry
	Page  Page
}

// Trace trazabilidad de un movimiento: el movimiento y los más recientes del mismo producto.
type Trace struct {
	Entry   *entity.KardexEntry
	Related []*entity.KardexEntry
}

// KardexQueryUseCase consultas de solo lectura sobre el kardex y el stock.
type KardexQueryUseCase struct {
	exec *executor
}

// NewKardexQueryUseCase construye el caso de uso.
func NewKardexQueryUseCase(txRunner TxRunner, log *logger.Logger, opts Options) *KardexQueryUseCase {
	return &KardexQueryUseCase{exec: newExecutor(txRunner, log, opts, "consultas")}
}

// List lista movimientos filtrados, ordenados por fecha desc e id desc.
func (uc *KardexQueryUseCase) List(ctx context.Context, q KardexQuery) (*KardexPage, error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	p := NewPage(q.Page, q.Limit)
	f.Limit, f.Offset = p.Limit, p.Offset()

	var out KardexPage
	err = uc.exec.read(ctx, "list_kardex", func(ctx context.Context, r Repos) error {
		items, total, err := r.Kardex.List(ctx, f)
		if err != nil {
			return err
		}
		out.Items = items
		out.Page = p.WithTotal(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (q KardexQuery) filter() (repository.KardexFilter, error) {
	f := repository.KardexFilter{
		ProductID:       q.ProductID,
		IngresoID:       q.IngresoID,
		RequestID:       q.RequestID,
		WorkOrderNumber: q.WorkOrderNumber,
		From:            q.From,
	}
	if q.OperationKind != "" {
		k, err := entity.ParseOperationKind(q.OperationKind)
		if err != nil {
			return f, domain.NewValidationError("operation_kind", err.Error())
		}
		f.OperationKind = k
	}
	if q.MovementKind != "" {
		m, err := entity.ParseMovementKind(q.MovementKind)
		if err != nil {
			return f, domain.NewValidationError("movement_kind", err.Error())
		}
		f.MovementKind = m
	}
	if q.To != nil {
		end := endOfDay(*q.To)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, domain.NewValidationError("from", "la fecha inicial es posterior a la final")
	}
	return f, nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// Trace busca un movimiento por número y agrega los últimos movimientos del mismo producto.
func (uc *KardexQueryUseCase) Trace(ctx context.Context, movementNumber string) (*Trace, error) {
	var out Trace
	err := uc.exec.read(ctx, "trace_kardex", func(ctx context.Context, r Repos) error {
		e, err := r.Kardex.GetByMovementNumber(ctx, movementNumber)
		if err != nil {
			return err
		}
		items, _, err := r.Kardex.List(ctx, repository.KardexFilter{ProductID: e.ProductID, Limit: RelatedMovements + 1})
		if err != nil {
			return err
		}
		out.Entry = e
		out.Related = make([]*entity.KardexEntry, 0, RelatedMovements)
		for _, it := range items {
			if it.ID != e.ID && len(out.Related) < RelatedMovements {
				out.Related = append(out.Related, it)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ByProduct últimos movimientos de un producto.
func (uc *KardexQueryUseCase) ByProduct(ctx context.Context, productID string, limit int) ([]*entity.KardexEntry, error) {
	p := NewPage(1, limit)
	var out []*entity.KardexEntry
	err := uc.exec.read(ctx, "kardex_by_product", func(ctx context.Context, r Repos) error {
		if _, err := r.Products.GetByID(ctx, productID); err != nil {
			return err
		}
		items, _, err := r.Kardex.List(ctx, repository.KardexFilter{ProductID: productID, Limit: p.Limit})
		out = items
		return err
	})
	return out, err
}

// GetStock devuelve el registro de stock de un producto.
func (uc *KardexQueryUseCase) GetStock(ctx context.Context, productID string) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := uc.exec.read(ctx, "get_stock", func(ctx context.Context, r Repos) error {
		var err error
		out, err = r.Stock.Get(ctx, productID)
		return err
	})
	return out, err
}
