package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/kardex-api/pkg/logger"
)

// sweepLockKey llave del lock distribuido de la conciliación periódica.
const sweepLockKey = "kardex:reconcile-sweep"

// Límites del vencimiento del lock de la pasada.
const (
	minLockTTL = time.Second
	maxLockTTL = 10 * time.Minute
)

// Sweeper ejecuta periódicamente la reevaluación de alertas y la conciliación completa.
// Un lock distribuido evita que varias réplicas lo hagan a la vez.
type Sweeper struct {
	alerts    *AlertUseCase
	reconcile *ReconciliationUseCase
	locker    Locker
	interval  time.Duration
	log       *logger.Logger
}

// NewSweeper construye el proceso periódico.
func NewSweeper(alerts *AlertUseCase, reconcile *ReconciliationUseCase, locker Locker, interval time.Duration, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{alerts: alerts, reconcile: reconcile, locker: locker, interval: interval, log: log.Component("barrido")}
}

// Run bloquea hasta que ctx termine. Con intervalo <= 0 retorna de inmediato.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("conciliación periódica")
			}
		}
	}
}

// RunOnce ejecuta una pasada si obtiene el lock. Devuelve false si otra réplica lo tenía.
// Mientras dura la pasada el lock se renueva cada tercio de su vencimiento; si se pierde,
// la pasada se interrumpe y se devuelve ErrLockLost.
func (s *Sweeper) RunOnce(ctx context.Context) (bool, error) {
	ttl := s.lockTTL()
	lease, ok, err := s.locker.TryLock(ctx, sweepLockKey, ttl)
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.Debug().Msg("conciliación periódica en curso en otra réplica")
		return false, nil
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			s.log.Warn().Err(err).Msg("liberar lock de conciliación")
		}
	}()

	sweepCtx, cancel := context.WithCancel(ctx)
	lost := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.keepAlive(sweepCtx, lease, ttl, lost, cancel)
	}()
	err = s.sweep(sweepCtx)
	cancel()
	<-done

	select {
	case lerr := <-lost:
		return true, fmt.Errorf("conciliación periódica interrumpida: %w", lerr)
	default:
	}
	return true, err
}

// keepAlive renueva el lease hasta que ctx termine. Si la renovación falla, informa en lost
// y cancela la pasada.
func (s *Sweeper) keepAlive(ctx context.Context, lease Lease, ttl time.Duration, lost chan<- error, cancel context.CancelFunc) {
	ticker := time.NewTicker(ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lease.Refresh(ctx, ttl); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Warn().Err(err).Msg("renovar lock de conciliación")
				lost <- err
				cancel()
				return
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	changed, err := s.alerts.RefreshAll(ctx)
	if err != nil {
		return err
	}
	report, err := s.reconcile.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	s.log.Info().
		Int("alertas_actualizadas", changed).
		Int("productos", len(report.Items)).
		Int("con_diferencia", report.Drifted).
		Msg("conciliación periódica completada")
	return nil
}

// lockTTL vencimiento del lock: el intervalo, entre minLockTTL y maxLockTTL.
// Se renueva durante la pasada, así que no necesita cubrir la pasada completa.
func (s *Sweeper) lockTTL() time.Duration {
	switch {
	case s.interval < minLockTTL:
		return minLockTTL
	case s.interval > maxLockTTL:
		return maxLockTTL
	}
	return s.interval
}
