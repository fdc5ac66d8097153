package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// executor aplica a cada operación un tiempo límite y reintentos ante fallas transitorias.
// Las operaciones que escriben en el kardex son idempotentes por su llave de operación,
// por lo que reintentar un resultado desconocido es seguro.
type executor struct {
	tx   TxRunner
	log  *logger.Logger
	opts Options
}

func newExecutor(tx TxRunner, log *logger.Logger, opts Options, component string) *executor {
	if log == nil {
		log = logger.Nop()
	}
	return &executor{tx: tx, log: log.Component(component), opts: opts.withDefaults()}
}

func (e *executor) now() time.Time { return e.opts.Now() }

// write ejecuta fn en una transacción de escritura con reintentos.
func (e *executor) write(ctx context.Context, op string, fn func(ctx context.Context, r Repos) error) error {
	return e.retry(ctx, op, func(opCtx context.Context) error {
		return e.tx.Run(opCtx, func(r Repos) error { return fn(opCtx, r) })
	})
}

// read ejecuta fn en una instantánea de solo lectura con reintentos.
func (e *executor) read(ctx context.Context, op string, fn func(ctx context.Context, r Repos) error) error {
	return e.retry(ctx, op, func(opCtx context.Context) error {
		return e.tx.ReadOnly(opCtx, func(r Repos) error { return fn(opCtx, r) })
	})
}

func (e *executor) retry(ctx context.Context, op string, attempt func(ctx context.Context) error) error {
	var err error
	for n := 1; ; n++ {
		opCtx, cancel := context.WithTimeout(ctx, e.opts.OpTimeout)
		err = attempt(opCtx)
		cancel()
		if err == nil || n >= e.opts.MaxAttempts || !e.retryable(ctx, err) {
			return err
		}
		e.log.Warn().Err(err).Str("op", op).Int("intento", n).Msg("reintentando operación")

		wait := e.opts.RetryBackoff * time.Duration(n)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// retryable: fallas transitorias, conflictos de versión y tiempo límite propio (no el del llamador).
func (e *executor) retryable(parent context.Context, err error) bool {
	if domain.IsRetryable(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil
}
