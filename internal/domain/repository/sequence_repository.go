package repository

import "context"

// SequenceRepository entrega enteros estrictamente crecientes por módulo en una sola operación atómica.
type SequenceRepository interface {
	Next(ctx context.Context, module string) (int64, error)
}
