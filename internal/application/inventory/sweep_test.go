package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

func TestAlerts_ListOrdenaPorUrgencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutProduct(&entity.Product{ID: "prod-002", Name: "Alcohol", Active: true, StockMinimo: d(10), StockCritico: d(2), StockMaximo: d(50)})
	f.seedStock(t, 3)
	_, err := f.ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "prod-002", Delta: d(8), Reason: "saldo inicial", Actor: actor})
	require.NoError(t, err)

	alerts, err := f.alerts.List(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, productID, alerts[0].Record.ProductID)
	assert.Equal(t, entity.AlertCritico, alerts[0].Kind)
	assert.Equal(t, inventory.UrgencyAlta, alerts[0].Urgency)
	assert.True(t, alerts[0].SuggestedOrderQty.Equal(d(197)))
	assert.Equal(t, 1, alerts[0].Priority)

	assert.Equal(t, entity.AlertBajo, alerts[1].Kind)
	assert.Equal(t, inventory.UrgencyMedia, alerts[1].Urgency)
	assert.True(t, alerts[1].SuggestedOrderQty.Equal(d(42)))
	assert.Equal(t, 2, alerts[1].Priority)
}

func TestAlerts_RefreshPorPasoDelTiempo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	expiry := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	_, err := f.ledger.AdjustStock(ctx, inventory.AdjustInput{
		ProductID: productID, Delta: d(100), Reason: "saldo inicial", ExpiryDate: &expiry, Actor: actor,
	})
	require.NoError(t, err)

	rec, err := f.queries.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, entity.AlertPorVencer, rec.AlertKind)

	changed, err := f.alerts.Refresh(ctx, productID)
	require.NoError(t, err)
	assert.False(t, changed, "sin cambios no escribe")

	f.clock.mu.Lock()
	f.clock.now = time.Date(2024, 6, 25, 8, 0, 0, 0, time.UTC)
	f.clock.mu.Unlock()

	n, err := f.alerts.RefreshAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	rec, err = f.queries.GetStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, entity.AlertVencido, rec.AlertKind)
	assert.Len(t, f.entries(t), 1, "reevaluar alertas no escribe en el kardex")
}

func newSweeper(f *fixture, locker inventory.Locker) *inventory.Sweeper {
	return inventory.NewSweeper(f.alerts, f.recon, locker, time.Minute, logger.Nop())
}

func TestSweeper_RunOnce(t *testing.T) {
	f := newFixture(t)
	f.seedStock(t, 30)

	ran, err := newSweeper(f, memory.NewLocker()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestSweeper_OtraReplicaTieneElLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	locker := memory.NewLocker()

	lease, ok, err := locker.TryLock(ctx, "kardex:reconcile-sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ran, err := newSweeper(f, locker).RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran)

	require.NoError(t, lease.Release(ctx))
	ran, err = newSweeper(f, locker).RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestSweeper_RunTerminaConElContexto(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		inventory.NewSweeper(f.alerts, f.recon, memory.NewLocker(), 5*time.Millisecond, nil).Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el sweeper no terminó al cancelar el contexto")
	}
}

// slowTx agrega una demora a cada transacción para que la pasada dure más que un tercio del lock.
type slowTx struct {
	inventory.TxRunner
	delay time.Duration
}

func (tx slowTx) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(tx.delay):
		return nil
	}
}

func (tx slowTx) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := tx.wait(ctx); err != nil {
		return err
	}
	return tx.TxRunner.Run(ctx, fn)
}

func (tx slowTx) ReadOnly(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := tx.wait(ctx); err != nil {
		return err
	}
	return tx.TxRunner.ReadOnly(ctx, fn)
}

// countingLocker cuenta las renovaciones; con fail las rechaza.
type countingLocker struct {
	inventory.Locker
	mu        sync.Mutex
	refreshes int
	fail      error
}

func (l *countingLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (inventory.Lease, bool, error) {
	lease, ok, err := l.Locker.TryLock(ctx, key, ttl)
	if err != nil || !ok {
		return lease, ok, err
	}
	return &countingLease{Lease: lease, owner: l}, true, nil
}

func (l *countingLocker) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshes
}

type countingLease struct {
	inventory.Lease
	owner *countingLocker
}

func (s *countingLease) Refresh(ctx context.Context, ttl time.Duration) error {
	s.owner.mu.Lock()
	s.owner.refreshes++
	fail := s.owner.fail
	s.owner.mu.Unlock()
	if fail != nil {
		return fail
	}
	return s.Lease.Refresh(ctx, ttl)
}

func slowSweeper(t *testing.T, locker inventory.Locker) *inventory.Sweeper {
	t.Helper()
	base := newFixture(t)
	base.seedStock(t, 30)
	f := newFixtureWith(t, base.store, slowTx{TxRunner: base.store, delay: 200 * time.Millisecond})
	return inventory.NewSweeper(f.alerts, f.recon, locker, time.Second, logger.Nop())
}

func TestSweeper_RenuevaElLockDuranteLaPasada(t *testing.T) {
	mem := memory.NewLocker()
	locker := &countingLocker{Locker: mem}
	ctx := context.Background()

	ran, err := slowSweeper(t, locker).RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.GreaterOrEqual(t, locker.count(), 1, "una pasada más larga que un tercio del lock lo renueva")

	lease, ok, err := mem.TryLock(ctx, "kardex:reconcile-sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "el lock se libera al terminar")
	require.NoError(t, lease.Release(ctx))
}

func TestSweeper_LockPerdidoInterrumpeLaPasada(t *testing.T) {
	locker := &countingLocker{Locker: memory.NewLocker(), fail: inventory.ErrLockLost}

	ran, err := slowSweeper(t, locker).RunOnce(context.Background())
	assert.True(t, ran)
	require.ErrorIs(t, err, inventory.ErrLockLost)
	assert.Equal(t, 1, locker.count(), "no se reintenta la renovación")
}
