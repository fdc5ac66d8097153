package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// MaxBulkIngresos máximo de ingresos por carga masiva.
const MaxBulkIngresos = 1000

// BulkItemResult resultado de un elemento de la carga. Index empieza en 1.
// Ingreso es nil cuando Err no lo es.
type BulkItemResult struct {
	Index   int
	Input   CreateIngresoInput
	Ingreso *entity.Ingreso
	Err     error
}

// BulkResult resumen de una carga masiva.
type BulkResult struct {
	Items         []BulkItemResult
	Succeeded     int
	Failed        int
	TotalValue    decimal.Decimal // suma del costo total de los creados
	TotalQuantity decimal.Decimal // suma de la cantidad solicitada de los creados
	ProcessedAt   time.Time
}

// SuccessRate porcentaje de elementos creados, redondeado a dos decimales.
func (b *BulkResult) SuccessRate() decimal.Decimal {
	if len(b.Items) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(b.Succeeded)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(len(b.Items)))).
		Round(2)
}

// CreateBulk crea cada ingreso en su propia transacción, en el orden recibido.
// Un elemento inválido no detiene la carga; si ctx termina, los pendientes quedan con su error.
func (uc *IngresoUseCase) CreateBulk(ctx context.Context, items []CreateIngresoInput, actor entity.Actor) (*BulkResult, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	if len(items) == 0 || len(items) > MaxBulkIngresos {
		return nil, domain.NewValidationError("items", fmt.Sprintf("debe tener entre 1 y %d ingresos", MaxBulkIngresos))
	}

	res := &BulkResult{
		Items:         make([]BulkItemResult, len(items)),
		TotalValue:    decimal.Zero,
		TotalQuantity: decimal.Zero,
	}
	for i, in := range items {
		item := BulkItemResult{Index: i + 1, Input: in}
		if err := ctx.Err(); err != nil {
			item.Err = err
		} else {
			item.Ingreso, item.Err = uc.Create(ctx, in, actor)
		}
		if item.Err != nil {
			res.Failed++
		} else {
			res.Succeeded++
			res.TotalValue = res.TotalValue.Add(item.Ingreso.TotalCost)
			res.TotalQuantity = res.TotalQuantity.Add(item.Ingreso.QuantityRequested)
		}
		res.Items[i] = item
	}
	res.ProcessedAt = uc.exec.now()

	uc.exec.log.Info().
		Int("total", len(items)).
		Int("exitosos", res.Succeeded).
		Int("errores", res.Failed).
		Str("valor_total", res.TotalValue.String()).
		Msg("carga masiva de ingresos")
	return res, nil
}
