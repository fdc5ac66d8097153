package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// Balance saldo derivado del kardex sobre una base inicial cero.
type Balance struct {
	StockInicial   decimal.Decimal
	Ingresos       decimal.Decimal // INGRESO + DEVOLUCION
	Salidas        decimal.Decimal
	Ajustes        decimal.Decimal // AJUSTE_POSITIVO - AJUSTE_NEGATIVO
	Transferencias decimal.Decimal // informativo, no afecta el saldo
	Calculado      decimal.Decimal
}

// FoldTotals pliega los totales por tipo de operación con la tabla de signos.
func FoldTotals(totals map[entity.OperationKind]decimal.Decimal) Balance {
	get := func(k entity.OperationKind) decimal.Decimal {
		if v, ok := totals[k]; ok {
			return v
		}
		return decimal.Zero
	}
	b := Balance{
		StockInicial:   decimal.Zero,
		Ingresos:       get(entity.OperationIngreso).Add(get(entity.OperationDevolucion)),
		Salidas:        get(entity.OperationSalida),
		Ajustes:        get(entity.OperationAjustePositivo).Sub(get(entity.OperationAjusteNegativo)),
		Transferencias: get(entity.OperationTransferencia),
	}
	calc := b.StockInicial
	for k, v := range totals {
		calc = calc.Add(v.Mul(decimal.NewFromInt(int64(k.Sign()))))
	}
	b.Calculado = calc
	return b
}

// ChainBreak un movimiento cuyo saldo anterior no coincide con el saldo posterior del movimiento previo.
type ChainBreak struct {
	MovementNumber string
	Expected       decimal.Decimal
	Found          decimal.Decimal
}

// CheckChain revisa la continuidad de saldos de los movimientos de un producto (orden ascendente).
// También detecta movimientos cuyo saldo posterior no respeta la tabla de signos.
func CheckChain(entries []*entity.KardexEntry) []ChainBreak {
	var breaks []ChainBreak
	prev := decimal.Zero
	for _, e := range entries {
		if !e.QuantityBefore.Equal(prev) {
			breaks = append(breaks, ChainBreak{MovementNumber: e.MovementNumber, Expected: prev, Found: e.QuantityBefore})
		}
		want := e.QuantityBefore.Add(e.SignedDelta())
		if !e.QuantityAfter.Equal(want) {
			breaks = append(breaks, ChainBreak{MovementNumber: e.MovementNumber, Expected: want, Found: e.QuantityAfter})
		}
		prev = e.QuantityAfter
	}
	return breaks
}
