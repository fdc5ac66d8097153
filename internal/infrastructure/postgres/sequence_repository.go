package postgres

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivos por módulo (kardex, ingreso).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo en una sola sentencia. La fila queda bloqueada
// hasta el fin de la transacción, así que el número y el registro que lo usa confirman juntos.
func (r *SequenceRepo) Next(ctx context.Context, module string) (int64, error) {
	query := `
		INSERT INTO secuencias (module, value) VALUES ($1, 1)
		ON CONFLICT (module) DO UPDATE SET value = secuencias.value + 1
		RETURNING value`
	var v int64
	if err := r.q.QueryRow(ctx, query, module).Scan(&v); err != nil {
		return 0, wrapErr("next sequence "+module, err)
	}
	return v, nil
}
