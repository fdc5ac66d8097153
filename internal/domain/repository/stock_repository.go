package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// StockFilter filtros del listado general de stock. Solo registros y productos activos.
type StockFilter struct {
	Low      bool // total <= stock mínimo del producto
	Critical bool // total <= stock crítico del producto
	Limit    int
	Offset   int
}

// StockView registro de stock con su producto del catálogo.
type StockView struct {
	Record  *entity.StockRecord
	Product *entity.Product
}

// StockRepository define el puerto del agregado de stock.
// CompareAndSwap es la única escritura: la usan el registro de movimientos (cantidades)
// y la reevaluación de alertas (solo bandera y tipo de alerta).
type StockRepository interface {
	// Get devuelve domain.ErrNotFound si el producto no tiene registro.
	Get(ctx context.Context, productID string) (*entity.StockRecord, error)
	// CreateIfMissing inserta el registro en cero si no existe (sin error si ya existe).
	CreateIfMissing(ctx context.Context, rec *entity.StockRecord) error
	// CompareAndSwap guarda rec solo si la versión almacenada es expectedVersion y la incrementa.
	// Devuelve domain.ErrConcurrentUpdate si otro escritor se adelantó.
	CompareAndSwap(ctx context.Context, rec *entity.StockRecord, expectedVersion int64) error
	// List ordena por nombre de producto y devuelve el total sin paginar.
	List(ctx context.Context, f StockFilter) ([]StockView, int64, error)
	ListAlerts(ctx context.Context) ([]*entity.StockRecord, error)
	ListProductIDs(ctx context.Context) ([]string, error)
}
