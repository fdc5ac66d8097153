package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Stock     repository.StockRepository
	Kardex    repository.KardexRepository
	Ingresos  repository.IngresoRepository
	Sequences repository.SequenceRepository
	Products  repository.ProductRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que stock, kardex, secuencia e ingreso se confirmen o se descarten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
	// ReadOnly abre una instantánea de solo lectura (no bloquea escritores).
	ReadOnly(ctx context.Context, fn func(r Repos) error) error
}

// ErrLockLost indica que el lock venció o lo tomó otro proceso.
var ErrLockLost = errors.New("lock perdido")

// Locker lock distribuido para tareas de fondo (una sola réplica a la vez).
// ok=false sin error significa que otro proceso tiene el lock.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (lease Lease, ok bool, err error)
}

// Lease lock obtenido. Refresh extiende el vencimiento a ttl desde ahora y devuelve
// ErrLockLost si ya no pertenece a quien lo tomó. Release no falla si el lock ya venció.
type Lease interface {
	Refresh(ctx context.Context, ttl time.Duration) error
	Release(ctx context.Context) error
}
