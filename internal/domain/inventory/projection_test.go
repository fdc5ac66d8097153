package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
)

var (
	testNow    = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	thresholds = entity.Thresholds{
		Minimo:  decimal.NewFromInt(10),
		Critico: decimal.NewFromInt(5),
		Maximo:  decimal.NewFromInt(500),
	}
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func recordWith(total int64) *entity.StockRecord {
	rec := entity.NewStockRecord("prod-1", "A-01", testNow.Add(-time.Hour))
	rec.QuantityTotal = d(total)
	rec.QuantityAvailable = d(total)
	rec.AverageCost = d(10)
	rec.InventoryValue = d(total * 10)
	return rec
}

func TestApply_OperacionesAditivas(t *testing.T) {
	for _, kind := range []entity.OperationKind{
		entity.OperationIngreso, entity.OperationDevolucion, entity.OperationAjustePositivo,
	} {
		t.Run(string(kind), func(t *testing.T) {
			rec := recordWith(50)
			p, err := inventory.Apply(rec, inventory.Movement{Kind: kind, Quantity: d(20), At: testNow}, thresholds, 30)
			require.NoError(t, err)

			assert.True(t, p.Before.Equal(d(50)))
			assert.True(t, p.After.Equal(d(70)), "total después debe ser 70")
			assert.True(t, p.Record.QuantityTotal.Equal(d(70)))
			assert.True(t, p.Record.QuantityAvailable.Equal(d(70)))
			assert.True(t, rec.QuantityTotal.Equal(d(50)), "el registro original no se modifica")
		})
	}
}

func TestApply_OperacionesSustractivas(t *testing.T) {
	for _, kind := range []entity.OperationKind{entity.OperationSalida, entity.OperationAjusteNegativo} {
		t.Run(string(kind), func(t *testing.T) {
			rec := recordWith(50)
			p, err := inventory.Apply(rec, inventory.Movement{Kind: kind, Quantity: d(50), At: testNow}, thresholds, 30)
			require.NoError(t, err)
			assert.True(t, p.After.IsZero(), "se puede dejar el stock en cero")

			_, err = inventory.Apply(rec, inventory.Movement{Kind: kind, Quantity: d(51), At: testNow}, thresholds, 30)
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		})
	}
}

func TestApply_NoPermiteBajarDeLoReservado(t *testing.T) {
	rec := recordWith(50)
	rec.QuantityReserved = d(20)
	rec.QuantityAvailable = d(30)

	_, err := inventory.Apply(rec, inventory.Movement{Kind: entity.OperationSalida, Quantity: d(31), At: testNow}, thresholds, 30)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, err := inventory.Apply(rec, inventory.Movement{Kind: entity.OperationSalida, Quantity: d(30), At: testNow}, thresholds, 30)
	require.NoError(t, err)
	assert.True(t, p.Record.QuantityAvailable.IsZero())
	assert.True(t, p.Record.QuantityReserved.Equal(d(20)))
}

func TestApply_TransferenciaNoCambiaTotal(t *testing.T) {
	rec := recordWith(50)
	p, err := inventory.Apply(rec, inventory.Movement{
		Kind: entity.OperationTransferencia, Quantity: d(50), Location: "B-07", At: testNow,
	}, thresholds, 30)
	require.NoError(t, err)

	assert.True(t, p.After.Equal(p.Before))
	assert.Equal(t, "B-07", p.Record.Location)

	_, err = inventory.Apply(rec, inventory.Movement{Kind: entity.OperationTransferencia, Quantity: d(1), At: testNow}, thresholds, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin ubicación destino es inválido")
}

func TestApply_CostoPromedioPonderado(t *testing.T) {
	rec := recordWith(100) // costo 10
	cost := d(20)
	p, err := inventory.Apply(rec, inventory.Movement{
		Kind: entity.OperationIngreso, Quantity: d(100), UnitCost: &cost, At: testNow,
	}, thresholds, 30)
	require.NoError(t, err)

	assert.True(t, p.Record.AverageCost.Equal(d(15)), "promedio entre 100@10 y 100@20 es 15")
	assert.True(t, p.Record.InventoryValue.Equal(d(3000)))
	assert.True(t, p.UnitCost.Equal(d(20)))
	assert.True(t, p.TotalCost.Equal(d(2000)))
}

func TestApply_SalidaUsaCostoPromedio(t *testing.T) {
	rec := recordWith(100)
	p, err := inventory.Apply(rec, inventory.Movement{Kind: entity.OperationSalida, Quantity: d(10), At: testNow}, thresholds, 30)
	require.NoError(t, err)
	assert.True(t, p.UnitCost.Equal(d(10)))
	assert.True(t, p.Record.AverageCost.Equal(d(10)), "una salida no cambia el costo promedio")
	assert.True(t, p.Record.InventoryValue.Equal(d(900)))
}

func TestApply_Rechazos(t *testing.T) {
	rec := recordWith(10)

	_, err := inventory.Apply(rec, inventory.Movement{Kind: entity.OperationIngreso, Quantity: decimal.Zero, At: testNow}, thresholds, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.Apply(rec, inventory.Movement{Kind: "OTRO", Quantity: d(1), At: testNow}, thresholds, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	neg := d(-1)
	_, err = inventory.Apply(rec, inventory.Movement{Kind: entity.OperationIngreso, Quantity: d(1), UnitCost: &neg, At: testNow}, thresholds, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	inactive := recordWith(10)
	inactive.Active = false
	_, err = inventory.Apply(inactive, inventory.Movement{Kind: entity.OperationIngreso, Quantity: d(1), At: testNow}, thresholds, 30)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApply_ActualizaLoteVencimientoYAlerta(t *testing.T) {
	rec := recordWith(100)
	exp := testNow.AddDate(0, 0, 10)
	p, err := inventory.Apply(rec, inventory.Movement{
		Kind: entity.OperationIngreso, Quantity: d(1), Batch: "L-9", ExpiryDate: &exp,
		Actor: entity.Actor{ID: "u1", Name: "Ana"}, At: testNow,
	}, thresholds, 30)
	require.NoError(t, err)

	assert.Equal(t, "L-9", p.Record.Batch)
	require.NotNil(t, p.Record.ExpiryDate)
	assert.True(t, p.Record.Alert)
	assert.Equal(t, entity.AlertPorVencer, p.Record.AlertKind)
	assert.Equal(t, "u1", p.Record.UpdatedBy)
	require.NotNil(t, p.Record.LastMovementAt)
	assert.Equal(t, testNow, *p.Record.LastMovementAt)
}
