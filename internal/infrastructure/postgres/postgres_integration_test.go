//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

var actor = entity.Actor{ID: "user-1", Name: "Laura Bodega"}

// newTestDB levanta un PostgreSQL efímero con el esquema aplicado y un producto de prueba.
func newTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("kardex_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := postgres.NewMigrator(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		INSERT INTO productos (id, code, name, stock_minimo, stock_maximo, stock_critico, default_unit_cost, location)
		VALUES ('prod-001', 'P-001', 'Guantes nitrilo', 10, 200, 5, 3, 'A-01')`)
	require.NoError(t, err)
	return pool
}

func options() inventory.Options {
	return inventory.Options{OpTimeout: 5 * time.Second, MaxAttempts: 5, RetryBackoff: 10 * time.Millisecond, MaxCASRetries: 10}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestPostgres_LedgerYConciliacion(t *testing.T) {
	pool := newTestDB(t)
	tx := postgres.NewTxRunner(pool)
	ledger := inventory.NewLedgerUseCase(tx, logger.Nop(), options())
	recon := inventory.NewReconciliationUseCase(tx, logger.Nop(), options())
	ctx := context.Background()

	_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "prod-001", Delta: d(40), Reason: "saldo inicial", Actor: actor})
	require.NoError(t, err)
	res, err := ledger.RecordMovement(ctx, inventory.MovementInput{
		ProductID: "prod-001", OperationKind: entity.OperationSalida, MovementKind: entity.MovementDespacho,
		Quantity: d(15), Actor: actor, OperationKey: "salida-1",
	})
	require.NoError(t, err)
	assert.True(t, res.Stock.QuantityTotal.Equal(d(25)))
	assert.Equal(t, int64(2), res.Stock.Version)

	again, err := ledger.RecordMovement(ctx, inventory.MovementInput{
		ProductID: "prod-001", OperationKind: entity.OperationSalida, MovementKind: entity.MovementDespacho,
		Quantity: d(15), Actor: actor, OperationKey: "salida-1",
	})
	require.NoError(t, err)
	assert.True(t, again.Replayed)

	_, err = ledger.RecordMovement(ctx, inventory.MovementInput{
		ProductID: "prod-001", OperationKind: entity.OperationSalida, MovementKind: entity.MovementDespacho,
		Quantity: d(26), Actor: actor,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, err := recon.Reconcile(ctx, "prod-001")
	require.NoError(t, err)
	assert.False(t, rec.Drift)
	assert.True(t, rec.StockCalculado.Equal(d(25)))
	assert.Equal(t, int64(2), rec.Movements)
}

func TestPostgres_AjustesConcurrentesSinDiferencia(t *testing.T) {
	pool := newTestDB(t)
	tx := postgres.NewTxRunner(pool)
	ledger := inventory.NewLedgerUseCase(tx, logger.Nop(), options())
	recon := inventory.NewReconciliationUseCase(tx, logger.Nop(), options())
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "prod-001", Delta: d(1), Reason: "conteo", Actor: actor})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rec, err := recon.Reconcile(ctx, "prod-001")
	require.NoError(t, err)
	assert.False(t, rec.Drift)
	assert.True(t, rec.StockSistema.Equal(d(n)))
	assert.Empty(t, rec.ChainBreaks)

	var distinct int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(DISTINCT movement_number) FROM kardex`).Scan(&distinct))
	assert.Equal(t, n, distinct)
}

func TestPostgres_ValidacionesConcurrentes(t *testing.T) {
	pool := newTestDB(t)
	tx := postgres.NewTxRunner(pool)
	ingresos := inventory.NewIngresoUseCase(tx, logger.Nop(), options())
	ctx := context.Background()

	ing, err := ingresos.Create(ctx, inventory.CreateIngresoInput{
		ProductID: "prod-001", Supplier: "Distribuidora Andina", QuantityRequested: d(100), UnitCost: d(4),
	}, actor)
	require.NoError(t, err)
	assert.Regexp(t, `^ING-\d{6}-0001$`, ing.ReceiptNumber)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ingresos.Validate(ctx, ing.ID, inventory.ValidateIngresoInput{QuantityReceived: d(100)}, actor)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}
	assert.Equal(t, 1, ok)

	var total decimal.Decimal
	require.NoError(t, pool.QueryRow(ctx, `SELECT quantity_total FROM stock WHERE product_id = 'prod-001'`).Scan(&total))
	assert.True(t, total.Equal(d(100)))
}

func TestPostgres_KardexInmutable(t *testing.T) {
	pool := newTestDB(t)
	ledger := inventory.NewLedgerUseCase(postgres.NewTxRunner(pool), logger.Nop(), options())
	ctx := context.Background()

	_, err := ledger.AdjustStock(ctx, inventory.AdjustInput{ProductID: "prod-001", Delta: d(5), Reason: "saldo inicial", Actor: actor})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE kardex SET quantity_delta = 50`)
	assert.Error(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM kardex`)
	assert.Error(t, err)
}
