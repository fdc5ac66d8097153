package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// Reconciliation resultado de conciliar un producto: saldo derivado del kardex contra el stock guardado.
// Diferencia = StockSistema - StockCalculado.
type Reconciliation struct {
	ProductID      string
	StockInicial   decimal.Decimal
	Ingresos       decimal.Decimal
	Salidas        decimal.Decimal
	Ajustes        decimal.Decimal
	Transferencias decimal.Decimal
	StockCalculado decimal.Decimal
	StockSistema   decimal.Decimal
	Diferencia     decimal.Decimal
	Movements      int64
	Drift          bool
	ChainBreaks    []inventory.ChainBreak
	CalculatedAt   time.Time
}

// ReconciliationReport conciliación de todos los productos.
type ReconciliationReport struct {
	Items        []Reconciliation
	Drifted      int
	CalculatedAt time.Time
}

// ReconciliationUseCase concilia kardex contra stock. Solo lectura: reporta diferencias, nunca corrige.
type ReconciliationUseCase struct {
	exec *executor
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(txRunner TxRunner, log *logger.Logger, opts Options) *ReconciliationUseCase {
	return &ReconciliationUseCase{exec: newExecutor(txRunner, log, opts, "conciliacion")}
}

// Reconcile concilia un producto y revisa la continuidad de saldos de su kardex.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, productID string) (*Reconciliation, error) {
	now := uc.exec.now()
	var out *Reconciliation
	err := uc.exec.read(ctx, "reconcile", func(ctx context.Context, r Repos) error {
		totals, err := r.Kardex.Totals(ctx, productID)
		if err != nil {
			return err
		}
		sistema, hasStock, err := stockTotal(ctx, r, productID)
		if err != nil {
			return err
		}
		if !hasStock && len(totals) == 0 {
			return domain.ErrNotFound
		}
		t := repository.KardexTotals{ProductID: productID}
		if len(totals) > 0 {
			t = totals[0]
		}
		rec := buildReconciliation(t, sistema, now)

		chain, err := r.Kardex.ListChain(ctx, productID)
		if err != nil {
			return err
		}
		rec.ChainBreaks = inventory.CheckChain(chain)
		if len(rec.ChainBreaks) > 0 {
			rec.Drift = true
		}
		out = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logDrift(*out)
	return out, nil
}

// ReconcileAll concilia todos los productos con stock o movimientos.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	now := uc.exec.now()
	report := &ReconciliationReport{CalculatedAt: now}
	err := uc.exec.read(ctx, "reconcile_all", func(ctx context.Context, r Repos) error {
		report.Items = nil
		report.Drifted = 0
		totals, err := r.Kardex.Totals(ctx, "")
		if err != nil {
			return err
		}
		byProduct := make(map[string]repository.KardexTotals, len(totals))
		for _, t := range totals {
			byProduct[t.ProductID] = t
		}
		ids, err := r.Stock.ListProductIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := byProduct[id]; !ok {
				byProduct[id] = repository.KardexTotals{ProductID: id}
			}
		}
		keys := make([]string, 0, len(byProduct))
		for id := range byProduct {
			keys = append(keys, id)
		}
		sort.Strings(keys)

		for _, id := range keys {
			sistema, _, err := stockTotal(ctx, r, id)
			if err != nil {
				return err
			}
			rec := buildReconciliation(byProduct[id], sistema, now)
			if rec.Drift {
				report.Drifted++
			}
			report.Items = append(report.Items, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, it := range report.Items {
		uc.logDrift(it)
	}
	return report, nil
}

func stockTotal(ctx context.Context, r Repos, productID string) (decimal.Decimal, bool, error) {
	rec, err := r.Stock.Get(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return rec.QuantityTotal, true, nil
}

func buildReconciliation(t repository.KardexTotals, sistema decimal.Decimal, now time.Time) Reconciliation {
	b := inventory.FoldTotals(t.ByKind)
	diff := sistema.Sub(b.Calculado)
	return Reconciliation{
		ProductID:      t.ProductID,
		StockInicial:   b.StockInicial,
		Ingresos:       b.Ingresos,
		Salidas:        b.Salidas,
		Ajustes:        b.Ajustes,
		Transferencias: b.Transferencias,
		StockCalculado: b.Calculado,
		StockSistema:   sistema,
		Diferencia:     diff,
		Movements:      t.Movements,
		Drift:          !diff.IsZero(),
		CalculatedAt:   now,
	}
}

func (uc *ReconciliationUseCase) logDrift(r Reconciliation) {
	if !r.Drift {
		return
	}
	uc.exec.log.Warn().
		Err(domain.ErrConsistencyDrift).
		Str("producto", r.ProductID).
		Str("stock_sistema", r.StockSistema.String()).
		Str("stock_calculado", r.StockCalculado.String()).
		Str("diferencia", r.Diferencia.String()).
		Int("cortes_cadena", len(r.ChainBreaks)).
		Msg("diferencia de conciliación")
}
