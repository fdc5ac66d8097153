package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// MovementInput entrada para registrar un movimiento en el kardex.
// OperationKey identifica la operación lógica; si viene vacío se genera uno.
// Un reintento con la misma llave devuelve el movimiento ya registrado sin aplicarlo de nuevo.
type MovementInput struct {
	ProductID         string
	OperationKind     entity.OperationKind
	MovementKind      entity.MovementKind
	Quantity          decimal.Decimal
	UnitCost          *decimal.Decimal
	Reason            string
	ReferenceDocument string
	DocumentNumber    string
	IngresoID         *int64
	RequestID         string
	WorkOrderNumber   string
	Batch             string
	ExpiryDate        *time.Time
	Location          string
	Actor             entity.Actor
	AuthorizedBy      *entity.Actor
	OperationKey      string
}

// MovementResult movimiento registrado y el stock resultante.
// Replayed es true cuando la llave ya existía y no se aplicó nada nuevo.
type MovementResult struct {
	Entry    *entity.KardexEntry
	Stock    *entity.StockRecord
	Replayed bool
}

// LedgerUseCase es la única puerta de entrada para modificar el stock:
// cada cambio del agregado queda en el kardex dentro de la misma transacción.
type LedgerUseCase struct {
	exec *executor
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, log *logger.Logger, opts Options) *LedgerUseCase {
	return &LedgerUseCase{exec: newExecutor(txRunner, log, opts, "kardex")}
}

// RecordMovement valida la entrada y registra el movimiento (stock + kardex) con reintentos.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := normalizeMovement(&in); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := uc.exec.write(ctx, "record_movement", func(ctx context.Context, r Repos) error {
		var err error
		res, err = uc.exec.record(ctx, r, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.exec.log.Info().
		Str("movimiento", res.Entry.MovementNumber).
		Str("producto", res.Entry.ProductID).
		Str("operacion", string(res.Entry.OperationKind)).
		Bool("repetido", res.Replayed).
		Msg("movimiento registrado")
	return res, nil
}

func normalizeMovement(in *MovementInput) error {
	if in.ProductID == "" {
		return domain.NewValidationError("product_id", "requerido")
	}
	if !in.OperationKind.Valid() {
		return domain.NewValidationError("operation_kind", "tipo de operación inválido")
	}
	if !in.MovementKind.Valid() {
		return domain.NewValidationError("movement_kind", "tipo de movimiento inválido")
	}
	if !in.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "la cantidad debe ser mayor a cero")
	}
	if err := checkQuantity("quantity", in.Quantity); err != nil {
		return err
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return domain.NewValidationError("unit_cost", "el costo unitario no puede ser negativo")
		}
		if err := checkCost("unit_cost", *in.UnitCost); err != nil {
			return err
		}
		if err := checkValue("unit_cost", in.Quantity.Mul(*in.UnitCost)); err != nil {
			return err
		}
	}
	if in.Actor.ID == "" {
		return domain.ErrUnauthorized
	}
	in.Reason = cleanText(in.Reason)
	in.Batch = cleanText(in.Batch)
	in.Location = cleanText(in.Location)
	if in.OperationKey == "" {
		in.OperationKey = uuid.New().String()
	}
	return nil
}

// record aplica el movimiento con los repositorios de la transacción en curso.
// Flujo: llave ya usada => devolver lo registrado; cargar producto y stock; proyectar;
// compare-and-swap con reintentos; secuencia y kardex en la misma transacción.
func (e *executor) record(ctx context.Context, r Repos, in MovementInput) (*MovementResult, error) {
	prev, err := r.Kardex.GetByTransactionID(ctx, in.OperationKey)
	switch {
	case err == nil:
		if prev.ProductID != in.ProductID || prev.OperationKind != in.OperationKind || !prev.QuantityDelta.Equal(in.Quantity) {
			return nil, domain.NewValidationError("operation_key", "la llave ya se usó para otro movimiento")
		}
		rec, err := r.Stock.Get(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		return &MovementResult{Entry: prev, Stock: rec, Replayed: true}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	product, err := r.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("producto %s inactivo: %w", product.ID, domain.ErrNotFound)
	}

	now := e.now()
	mv := inventory.Movement{
		Kind:       in.OperationKind,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		Batch:      in.Batch,
		ExpiryDate: in.ExpiryDate,
		Location:   in.Location,
		Actor:      in.Actor,
		At:         now,
	}

	var proj *inventory.Projection
	for n := 1; ; n++ {
		current, err := loadStock(ctx, r, product, now)
		if err != nil {
			return nil, err
		}
		proj, err = inventory.Apply(current, mv, product.Thresholds(), e.opts.ExpiryWindowDays)
		if err != nil {
			return nil, err
		}
		err = r.Stock.CompareAndSwap(ctx, proj.Record, current.Version)
		if err == nil {
			proj.Record.Version = current.Version + 1
			break
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) || n >= e.opts.MaxCASRetries {
			return nil, err
		}
		e.log.Debug().Str("producto", product.ID).Int("intento", n).Msg("conflicto de versión en stock")
	}

	seq, err := r.Sequences.Next(ctx, inventory.SequenceKardex)
	if err != nil {
		return nil, err
	}
	entry := &entity.KardexEntry{
		ID:                seq,
		MovementNumber:    inventory.MovementNumber(now, seq),
		TransactionID:     in.OperationKey,
		ProductID:         product.ID,
		OperationKind:     in.OperationKind,
		MovementKind:      in.MovementKind,
		QuantityBefore:    proj.Before,
		QuantityDelta:     in.Quantity,
		QuantityAfter:     proj.After,
		UnitCost:          proj.UnitCost,
		TotalCost:         proj.TotalCost,
		Reason:            in.Reason,
		ReferenceDocument: in.ReferenceDocument,
		DocumentNumber:    in.DocumentNumber,
		IngresoID:         in.IngresoID,
		RequestID:         in.RequestID,
		WorkOrderNumber:   in.WorkOrderNumber,
		Batch:             proj.Record.Batch,
		Location:          proj.Record.Location,
		MovedAt:           now,
		ActorID:           in.Actor.ID,
		ActorName:         in.Actor.Name,
		CreatedAt:         now,
	}
	if in.AuthorizedBy != nil {
		entry.AuthorizedByID = in.AuthorizedBy.ID
		entry.AuthorizedByName = in.AuthorizedBy.Name
	}
	if err := r.Kardex.Append(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// otra ejecución con la misma llave confirmó primero; el reintento devolverá su resultado
			return nil, fmt.Errorf("llave %s en uso: %w", in.OperationKey, domain.ErrTransient)
		}
		return nil, err
	}
	return &MovementResult{Entry: entry, Stock: proj.Record}, nil
}

// loadStock devuelve el registro de stock, creándolo en cero la primera vez.
func loadStock(ctx context.Context, r Repos, product *entity.Product, now time.Time) (*entity.StockRecord, error) {
	rec, err := r.Stock.Get(ctx, product.ID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := r.Stock.CreateIfMissing(ctx, entity.NewStockRecord(product.ID, product.Location, now)); err != nil {
		return nil, err
	}
	return r.Stock.Get(ctx, product.ID)
}
