package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// KardexEntry es un movimiento inmutable del kardex.
// QuantityAfter = QuantityBefore + Sign(OperationKind) * QuantityDelta.
type KardexEntry struct {
	ID                int64
	MovementNumber    string // KDX-YYYYMMDD-000001
	TransactionID     string // llave de operación, única; permite reintentos idempotentes
	ProductID         string
	OperationKind     OperationKind
	MovementKind      MovementKind
	QuantityBefore    decimal.Decimal
	QuantityDelta     decimal.Decimal // magnitud (> 0)
	QuantityAfter     decimal.Decimal
	UnitCost          decimal.Decimal
	TotalCost         decimal.Decimal
	Reason            string
	ReferenceDocument string
	DocumentNumber    string
	IngresoID         *int64
	RequestID         string
	WorkOrderNumber   string
	Batch             string
	Location          string
	MovedAt           time.Time
	ActorID           string
	ActorName         string
	AuthorizedByID    string
	AuthorizedByName  string
	CreatedAt         time.Time
}

// SignedDelta devuelve el delta con signo según la tabla de operaciones.
func (e *KardexEntry) SignedDelta() decimal.Decimal {
	return e.QuantityDelta.Mul(decimal.NewFromInt(int64(e.OperationKind.Sign())))
}
