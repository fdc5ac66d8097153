package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: store en memoria con dos productos y todos los casos de uso
// ──────────────────────────────────────────────────────────────────────────────

const (
	productID  = "prod-001"
	inactiveID = "prod-off"
)

var actor = entity.Actor{ID: "user-1", Name: "Laura Bodega"}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now avanza un segundo en cada llamada para que el orden del kardex sea determinista.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	store    *memory.Store
	clock    *fakeClock
	opts     inventory.Options
	ledger   *inventory.LedgerUseCase
	ingresos *inventory.IngresoUseCase
	queries  *inventory.KardexQueryUseCase
	alerts   *inventory.AlertUseCase
	recon    *inventory.ReconciliationUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutProduct(&entity.Product{
		ID: productID, Code: "P-001", Name: "Guantes nitrilo", Active: true,
		StockMinimo: d(10), StockCritico: d(5), StockMaximo: d(200),
		DefaultUnitCost: d(3), Location: "A-01",
	})
	store.PutProduct(&entity.Product{ID: inactiveID, Name: "Descontinuado", Active: false})
	return newFixtureWith(t, store, store)
}

func newFixtureWith(t *testing.T, store *memory.Store, tx inventory.TxRunner, tweaks ...func(*inventory.Options)) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	opts := inventory.Options{
		OpTimeout:     time.Second,
		MaxAttempts:   3,
		RetryBackoff:  time.Millisecond,
		MaxCASRetries: 3,
		Now:           clock.Now,
	}
	for _, tweak := range tweaks {
		tweak(&opts)
	}
	log := logger.Nop()
	return &fixture{
		store:    store,
		clock:    clock,
		opts:     opts,
		ledger:   inventory.NewLedgerUseCase(tx, log, opts),
		ingresos: inventory.NewIngresoUseCase(tx, log, opts),
		queries:  inventory.NewKardexQueryUseCase(tx, log, opts),
		alerts:   inventory.NewAlertUseCase(tx, log, opts),
		recon:    inventory.NewReconciliationUseCase(tx, log, opts),
	}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (f *fixture) stockTotal(t *testing.T) decimal.Decimal {
	t.Helper()
	rec, err := f.queries.GetStock(context.Background(), productID)
	require.NoError(t, err)
	return rec.QuantityTotal
}

func (f *fixture) entries(t *testing.T) []*entity.KardexEntry {
	t.Helper()
	page, err := f.queries.List(context.Background(), inventory.KardexQuery{ProductID: productID, Limit: 100})
	require.NoError(t, err)
	return page.Items
}

func (f *fixture) seedStock(t *testing.T, qty int64) {
	t.Helper()
	_, err := f.ledger.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID: productID, Delta: d(qty), Reason: "saldo inicial", Actor: actor,
	})
	require.NoError(t, err)
}

func (f *fixture) createIngreso(t *testing.T, requested int64) *entity.Ingreso {
	t.Helper()
	ing, err := f.ingresos.Create(context.Background(), inventory.CreateIngresoInput{
		ProductID:         productID,
		Supplier:          "Distribuidora Andina",
		Invoice:           "FV-889",
		QuantityRequested: d(requested),
		UnitCost:          d(4),
		Batch:             "L-2024-06",
	}, actor)
	require.NoError(t, err)
	return ing
}
