package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// KardexFilter filtros del listado del kardex. Campos vacíos no filtran.
type KardexFilter struct {
	ProductID       string
	OperationKind   entity.OperationKind
	MovementKind    entity.MovementKind
	IngresoID       *int64
	RequestID       string
	WorkOrderNumber string
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
}

// KardexTotals cantidades acumuladas por tipo de operación para un producto.
type KardexTotals struct {
	ProductID string
	ByKind    map[entity.OperationKind]decimal.Decimal
	Movements int64
}

// KardexRepository puerto del kardex: solo inserción y lectura, nunca actualización ni borrado.
type KardexRepository interface {
	// Append inserta el movimiento. Devuelve domain.ErrDuplicate si el TransactionID ya existe.
	Append(ctx context.Context, e *entity.KardexEntry) error
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.KardexEntry, error)
	GetByMovementNumber(ctx context.Context, number string) (*entity.KardexEntry, error)
	// List ordena por fecha desc, id desc y devuelve el total sin paginar.
	List(ctx context.Context, f KardexFilter) ([]*entity.KardexEntry, int64, error)
	// ListChain devuelve todos los movimientos del producto en orden de inserción.
	ListChain(ctx context.Context, productID string) ([]*entity.KardexEntry, error)
	// Totals agrupa por producto; productID vacío incluye todos.
	Totals(ctx context.Context, productID string) ([]KardexTotals, error)
}
