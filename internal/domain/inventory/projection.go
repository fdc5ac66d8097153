package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// Movement es un movimiento a proyectar sobre el agregado de stock.
type Movement struct {
	Kind       entity.OperationKind
	Quantity   decimal.Decimal // magnitud, > 0
	UnitCost   *decimal.Decimal
	Batch      string
	ExpiryDate *time.Time
	Location   string
	Actor      entity.Actor
	At         time.Time
}

// Projection resultado de aplicar un movimiento: el nuevo registro y las cantidades antes/después.
type Projection struct {
	Record    *entity.StockRecord
	Before    decimal.Decimal
	After     decimal.Decimal
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
}

// Apply es la única función que calcula el siguiente estado del agregado de stock.
// No modifica current. Reglas:
//   - el registro debe estar activo (ErrNotFound si no);
//   - total nuevo = total + signo(kind) * cantidad; negativo o menor a lo reservado => ErrInsufficientStock;
//   - las entradas con costo recalculan el costo promedio ponderado;
//   - disponible, valor de inventario y alertas se recalculan siempre.
func Apply(current *entity.StockRecord, m Movement, th entity.Thresholds, windowDays int) (*Projection, error) {
	if current == nil || !current.Active {
		return nil, domain.ErrNotFound
	}
	if !m.Kind.Valid() {
		return nil, domain.NewValidationError("operation_kind", "tipo de operación inválido")
	}
	if !m.Quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor a cero")
	}
	if m.UnitCost != nil && m.UnitCost.IsNegative() {
		return nil, domain.NewValidationError("unit_cost", "el costo unitario no puede ser negativo")
	}
	if m.Kind == entity.OperationTransferencia && m.Location == "" {
		return nil, domain.NewValidationError("location", "la transferencia requiere ubicación destino")
	}

	next := current.Clone()
	before := current.QuantityTotal
	sign := decimal.NewFromInt(int64(m.Kind.Sign()))
	after := before.Add(m.Quantity.Mul(sign))

	if m.Kind.Sign() < 0 {
		if after.IsNegative() || after.LessThan(current.QuantityReserved) {
			return nil, domain.ErrInsufficientStock
		}
	}

	unitCost := current.AverageCost
	if m.UnitCost != nil {
		unitCost = *m.UnitCost
	}
	if m.Kind.Sign() > 0 && m.UnitCost != nil {
		next.AverageCost = CostCalculator(before, current.AverageCost, m.Quantity, unitCost)
	}

	next.QuantityTotal = after
	next.QuantityAvailable = after.Sub(next.QuantityReserved)
	next.InventoryValue = after.Mul(next.AverageCost)
	if m.Batch != "" {
		next.Batch = m.Batch
	}
	if m.ExpiryDate != nil {
		t := *m.ExpiryDate
		next.ExpiryDate = &t
	}
	if m.Location != "" {
		next.Location = m.Location
	}
	at := m.At
	next.LastMovementAt = &at
	next.UpdatedAt = m.At
	next.UpdatedBy = m.Actor.ID
	next.UpdatedByName = m.Actor.Name
	RefreshAlert(next, th, m.At, windowDays)

	return &Projection{
		Record:    next,
		Before:    before,
		After:     after,
		UnitCost:  unitCost,
		TotalCost: m.Quantity.Mul(unitCost),
	}, nil
}
