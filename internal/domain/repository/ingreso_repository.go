package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// IngresoFilter filtros del listado de ingresos. Los campos de texto de búsqueda
// comparan por subcadena sin distinguir mayúsculas; From y To acotan created_at (inclusive).
type IngresoFilter struct {
	Condition     *entity.Condition
	ProductID     string
	ReceiptNumber string
	ProductCode   string
	Supplier      string
	Invoice       string
	From          *time.Time
	To            *time.Time
	OldestFirst   bool
	Limit         int
	Offset        int
}

// IngresoRepository puerto de persistencia de ingresos.
type IngresoRepository interface {
	Create(ctx context.Context, in *entity.Ingreso) error
	// GetByID devuelve domain.ErrNotFound si no existe o está inactivo.
	GetByID(ctx context.Context, id int64) (*entity.Ingreso, error)
	// Save persiste in solo si su condición almacenada es from y no cambió desde prevUpdatedAt.
	// domain.ErrInvalidState si la condición ya no es from; domain.ErrConcurrentUpdate si solo cambió updated_at.
	Save(ctx context.Context, in *entity.Ingreso, from entity.Condition, prevUpdatedAt time.Time) error
	List(ctx context.Context, f IngresoFilter) ([]*entity.Ingreso, int64, error)
}
