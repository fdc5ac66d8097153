package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ProductRepository puerto de solo lectura hacia el catálogo de productos.
type ProductRepository interface {
	// GetByID devuelve domain.ErrNotFound si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
