package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
)

// ChainBreakDTO movimiento cuyo saldo no encadena con el anterior.
type ChainBreakDTO struct {
	MovementNumber string          `json:"movement_number"`
	Expected       decimal.Decimal `json:"expected"`
	Found          decimal.Decimal `json:"found"`
}

// ReconciliationDTO conciliación de un producto. diferencia = stock_sistema - stock_calculado.
type ReconciliationDTO struct {
	ProductID      string          `json:"product_id"`
	StockInicial   decimal.Decimal `json:"stock_inicial"`
	Ingresos       decimal.Decimal `json:"ingresos"`
	Salidas        decimal.Decimal `json:"salidas"`
	Ajustes        decimal.Decimal `json:"ajustes"`
	Transferencias decimal.Decimal `json:"transferencias"`
	StockCalculado decimal.Decimal `json:"stock_calculado"`
	StockSistema   decimal.Decimal `json:"stock_sistema"`
	Diferencia     decimal.Decimal `json:"diferencia"`
	Movements      int64           `json:"movements"`
	Consistent     bool            `json:"consistent"`
	ChainBreaks    []ChainBreakDTO `json:"chain_breaks,omitempty"`
	CalculatedAt   time.Time       `json:"calculated_at"`
}

// ReconciliationReportDTO conciliación de todos los productos.
type ReconciliationReportDTO struct {
	Items        []ReconciliationDTO `json:"items"`
	Total        int                 `json:"total"`
	Drifted      int                 `json:"drifted"`
	CalculatedAt time.Time           `json:"calculated_at"`
}

// ToReconciliationDTO convierte una conciliación.
func ToReconciliationDTO(r *inventory.Reconciliation) ReconciliationDTO {
	out := ReconciliationDTO{
		ProductID:      r.ProductID,
		StockInicial:   r.StockInicial,
		Ingresos:       r.Ingresos,
		Salidas:        r.Salidas,
		Ajustes:        r.Ajustes,
		Transferencias: r.Transferencias,
		StockCalculado: r.StockCalculado,
		StockSistema:   r.StockSistema,
		Diferencia:     r.Diferencia,
		Movements:      r.Movements,
		Consistent:     !r.Drift,
		CalculatedAt:   r.CalculatedAt,
	}
	for _, b := range r.ChainBreaks {
		out.ChainBreaks = append(out.ChainBreaks, ChainBreakDTO{MovementNumber: b.MovementNumber, Expected: b.Expected, Found: b.Found})
	}
	return out
}

// ToReconciliationReportDTO convierte el reporte completo.
func ToReconciliationReportDTO(r *inventory.ReconciliationReport) ReconciliationReportDTO {
	items := make([]ReconciliationDTO, 0, len(r.Items))
	for i := range r.Items {
		items = append(items, ToReconciliationDTO(&r.Items[i]))
	}
	return ReconciliationReportDTO{Items: items, Total: len(items), Drifted: r.Drifted, CalculatedAt: r.CalculatedAt}
}
