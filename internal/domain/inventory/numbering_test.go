package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
)

func TestMovementNumber(t *testing.T) {
	at := time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "KDX-20240105-000042", inventory.MovementNumber(at, 42))
	assert.Equal(t, "KDX-20240105-1234567", inventory.MovementNumber(at, 1234567), "no se trunca al exceder 6 dígitos")
}

func TestReceiptNumber(t *testing.T) {
	at := time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "ING-202411-0007", inventory.ReceiptNumber(at, 7))
}

func TestCostCalculator(t *testing.T) {
	got := inventory.CostCalculator(decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(30), decimal.NewFromInt(200))
	assert.True(t, got.Equal(decimal.NewFromInt(175)), "((10*100)+(30*200))/40 = 175, obtenido %s", got)

	assert.True(t, inventory.CostCalculator(decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(5)).IsZero())
}

func TestFoldTotals(t *testing.T) {
	b := inventory.FoldTotals(map[entity.OperationKind]decimal.Decimal{
		entity.OperationIngreso:        decimal.NewFromInt(100),
		entity.OperationDevolucion:     decimal.NewFromInt(5),
		entity.OperationSalida:         decimal.NewFromInt(30),
		entity.OperationAjustePositivo: decimal.NewFromInt(10),
		entity.OperationAjusteNegativo: decimal.NewFromInt(4),
		entity.OperationTransferencia:  decimal.NewFromInt(50),
	})
	assert.True(t, b.Ingresos.Equal(decimal.NewFromInt(105)))
	assert.True(t, b.Salidas.Equal(decimal.NewFromInt(30)))
	assert.True(t, b.Ajustes.Equal(decimal.NewFromInt(6)))
	assert.True(t, b.Calculado.Equal(decimal.NewFromInt(81)), "transferencias no afectan el saldo")
}

func TestCheckChain(t *testing.T) {
	entries := []*entity.KardexEntry{
		{MovementNumber: "KDX-1", OperationKind: entity.OperationIngreso, QuantityBefore: decimal.Zero, QuantityDelta: decimal.NewFromInt(10), QuantityAfter: decimal.NewFromInt(10)},
		{MovementNumber: "KDX-2", OperationKind: entity.OperationSalida, QuantityBefore: decimal.NewFromInt(10), QuantityDelta: decimal.NewFromInt(4), QuantityAfter: decimal.NewFromInt(6)},
	}
	assert.Empty(t, inventory.CheckChain(entries))

	entries = append(entries, &entity.KardexEntry{
		MovementNumber: "KDX-3", OperationKind: entity.OperationIngreso,
		QuantityBefore: decimal.NewFromInt(8), QuantityDelta: decimal.NewFromInt(2), QuantityAfter: decimal.NewFromInt(10),
	})
	breaks := inventory.CheckChain(entries)
	if assert.Len(t, breaks, 1) {
		assert.Equal(t, "KDX-3", breaks[0].MovementNumber)
		assert.True(t, breaks[0].Expected.Equal(decimal.NewFromInt(6)))
	}
}
