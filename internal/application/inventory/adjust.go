package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// AdjustInput ajuste directo de stock. Delta con signo: positivo suma, negativo resta.
type AdjustInput struct {
	ProductID    string
	Delta        decimal.Decimal
	Reason       string
	UnitCost     *decimal.Decimal
	Batch        string
	ExpiryDate   *time.Time
	Location     string
	Actor        entity.Actor
	AuthorizedBy *entity.Actor
	OperationKey string
}

// AdjustStock traduce el ajuste en un movimiento AJUSTE_POSITIVO o AJUSTE_NEGATIVO.
// El ajuste siempre deja rastro en el kardex; un saldo inicial se registra con este mismo camino.
func (uc *LedgerUseCase) AdjustStock(ctx context.Context, in AdjustInput) (*MovementResult, error) {
	if in.Delta.IsZero() {
		return nil, domain.NewValidationError("delta", "el ajuste no puede ser cero")
	}
	if err := checkQuantity("delta", in.Delta); err != nil {
		return nil, err
	}
	if cleanText(in.Reason) == "" {
		return nil, domain.NewValidationError("reason", "el motivo del ajuste es obligatorio")
	}
	kind := entity.OperationAjustePositivo
	if in.Delta.IsNegative() {
		kind = entity.OperationAjusteNegativo
	}
	return uc.RecordMovement(ctx, MovementInput{
		ProductID:     in.ProductID,
		OperationKind: kind,
		MovementKind:  entity.MovementAjuste,
		Quantity:      in.Delta.Abs(),
		UnitCost:      in.UnitCost,
		Reason:        in.Reason,
		Batch:         in.Batch,
		ExpiryDate:    in.ExpiryDate,
		Location:      in.Location,
		Actor:         in.Actor,
		AuthorizedBy:  in.AuthorizedBy,
		OperationKey:  in.OperationKey,
	})
}
