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
)

// timeoutTx simula un resultado desconocido por tiempo límite en los primeros intentos.
// commit indica si la transacción alcanza a confirmarse antes de reportar el error.
// block espera a que venza el contexto de la operación en lugar de devolver el error de inmediato.
type timeoutTx struct {
	inventory.TxRunner
	commit bool
	block  bool

	mu    sync.Mutex
	fails int
	calls int
}

func (tx *timeoutTx) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	tx.mu.Lock()
	tx.calls++
	failing := tx.fails > 0
	if failing {
		tx.fails--
	}
	tx.mu.Unlock()

	if !failing {
		return tx.TxRunner.Run(ctx, fn)
	}
	if tx.commit {
		if err := tx.TxRunner.Run(ctx, fn); err != nil {
			return err
		}
	}
	if tx.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return context.DeadlineExceeded
}

func shortTimeout(o *inventory.Options) {
	o.OpTimeout = 30 * time.Millisecond
	o.MaxAttempts = 3
	o.RetryBackoff = time.Millisecond
}

func TestExecutor_ReintentoTrasTiempoLimite(t *testing.T) {
	cases := []struct {
		name         string
		commit       bool
		block        bool
		wantReplayed bool
	}{
		{name: "confirma y luego reporta deadline", commit: true, wantReplayed: true},
		{name: "confirma y bloquea más allá del límite", commit: true, block: true, wantReplayed: true},
		{name: "bloquea sin confirmar", block: true, wantReplayed: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := newFixture(t)
			tx := &timeoutTx{TxRunner: base.store, commit: tc.commit, block: tc.block, fails: 1}
			f := newFixtureWith(t, base.store, tx, shortTimeout)
			ctx := context.Background()

			res, err := f.ledger.RecordMovement(ctx, inventory.MovementInput{
				ProductID: productID, OperationKind: entity.OperationIngreso, MovementKind: entity.MovementCompra,
				Quantity: d(7), Actor: actor, OperationKey: "op-timeout",
			})
			require.NoError(t, err)
			assert.Equal(t, 2, tx.calls, "un solo reintento")
			assert.Equal(t, tc.wantReplayed, res.Replayed)
			assert.Equal(t, "KDX-20240601-000001", res.Entry.MovementNumber)

			assert.Len(t, f.entries(t), 1, "exactamente un movimiento en el kardex")
			assert.True(t, f.stockTotal(t).Equal(d(7)), "aplicado una sola vez")

			// la secuencia avanzó una sola vez: el siguiente número es consecutivo
			next, err := f.ledger.RecordMovement(ctx, inventory.MovementInput{
				ProductID: productID, OperationKind: entity.OperationIngreso, MovementKind: entity.MovementCompra,
				Quantity: d(1), Actor: actor,
			})
			require.NoError(t, err)
			assert.Equal(t, "KDX-20240601-000002", next.Entry.MovementNumber)
		})
	}
}

func TestExecutor_ValidacionTrasTiempoLimite(t *testing.T) {
	base := newFixture(t)
	tx := &timeoutTx{TxRunner: base.store, commit: true, block: true}
	f := newFixtureWith(t, base.store, tx, shortTimeout)
	ctx := context.Background()
	ing := f.createIngreso(t, 10)

	tx.mu.Lock()
	tx.fails = 1
	tx.mu.Unlock()
	res, err := f.ingresos.Validate(ctx, ing.ID, inventory.ValidateIngresoInput{QuantityReceived: d(10)}, actor)
	require.NoError(t, err)
	assert.True(t, res.Movement.Replayed)
	assert.Equal(t, entity.ConditionValidated, res.Ingreso.Condition)
	assert.Len(t, f.entries(t), 1)
	assert.True(t, f.stockTotal(t).Equal(d(10)))
}

func TestExecutor_NoReintentaSiVenceElContextoDelLlamador(t *testing.T) {
	base := newFixture(t)
	tx := &timeoutTx{TxRunner: base.store, block: true, fails: 5}
	f := newFixtureWith(t, base.store, tx, func(o *inventory.Options) {
		o.OpTimeout = time.Second
		o.MaxAttempts = 3
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInput{
		ProductID: productID, OperationKind: entity.OperationIngreso, MovementKind: entity.MovementCompra,
		Quantity: d(1), Actor: actor,
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, tx.calls, "el tiempo del llamador no se reintenta")
	assert.Empty(t, f.entries(t))
}

func TestExecutor_AgotaLosIntentos(t *testing.T) {
	base := newFixture(t)
	tx := &timeoutTx{TxRunner: base.store, fails: 10}
	f := newFixtureWith(t, base.store, tx, shortTimeout)

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: productID, OperationKind: entity.OperationIngreso, MovementKind: entity.MovementCompra,
		Quantity: d(1), Actor: actor,
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 3, tx.calls)
	assert.Empty(t, f.entries(t))
}
