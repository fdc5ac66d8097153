package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// Urgencias de una alerta.
const (
	UrgencyAlta  = "alta"
	UrgencyMedia = "media"
)

// urgentExpiryDays días de vencimiento a partir de los cuales la alerta es de urgencia alta.
const urgentExpiryDays = 7

// StockAlert alerta de stock enriquecida con el catálogo y una sugerencia de reposición.
type StockAlert struct {
	Record            *entity.StockRecord
	Product           *entity.Product
	Kind              entity.AlertKind
	Urgency           string
	DaysToExpiry      *int
	SuggestedOrderQty decimal.Decimal // StockMaximo - total, solo para bajo/crítico
	Priority          int             // 1 = más urgente
}

// AlertUseCase consulta y reevalúa alertas de stock.
type AlertUseCase struct {
	exec *executor
}

// NewAlertUseCase construye el caso de uso.
func NewAlertUseCase(txRunner TxRunner, log *logger.Logger, opts Options) *AlertUseCase {
	return &AlertUseCase{exec: newExecutor(txRunner, log, opts, "alertas")}
}

// List devuelve los registros con alerta activa ordenados por urgencia.
func (uc *AlertUseCase) List(ctx context.Context) ([]StockAlert, error) {
	now := uc.exec.now()
	var out []StockAlert
	err := uc.exec.read(ctx, "list_alerts", func(ctx context.Context, r Repos) error {
		recs, err := r.Stock.ListAlerts(ctx)
		if err != nil {
			return err
		}
		out = make([]StockAlert, 0, len(recs))
		for _, rec := range recs {
			product, err := r.Products.GetByID(ctx, rec.ProductID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			a := StockAlert{Record: rec, Product: product, Kind: rec.AlertKind, Urgency: UrgencyMedia, SuggestedOrderQty: decimal.Zero}
			if rec.ExpiryDate != nil {
				days := inventory.DaysUntil(*rec.ExpiryDate, now)
				a.DaysToExpiry = &days
			}
			switch rec.AlertKind {
			case entity.AlertCritico, entity.AlertVencido:
				a.Urgency = UrgencyAlta
			case entity.AlertPorVencer:
				if a.DaysToExpiry != nil && *a.DaysToExpiry <= urgentExpiryDays {
					a.Urgency = UrgencyAlta
				}
			}
			if rec.AlertKind == entity.AlertCritico || rec.AlertKind == entity.AlertBajo {
				if gap := product.StockMaximo.Sub(rec.QuantityTotal); gap.IsPositive() {
					a.SuggestedOrderQty = gap
				}
			}
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Orden: urgencia alta primero, luego severidad del motivo, luego mayor déficit.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Urgency != b.Urgency {
			return a.Urgency == UrgencyAlta
		}
		if ra, rb := kindRank(a.Kind), kindRank(b.Kind); ra != rb {
			return ra < rb
		}
		return a.SuggestedOrderQty.GreaterThan(b.SuggestedOrderQty)
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

func kindRank(k entity.AlertKind) int {
	switch k {
	case entity.AlertCritico:
		return 0
	case entity.AlertVencido:
		return 1
	case entity.AlertBajo:
		return 2
	case entity.AlertPorVencer:
		return 3
	}
	return 4
}

// Refresh reevalúa la alerta de un producto sin movimiento (p. ej. un lote que vence con el tiempo).
// Solo escribe si la alerta cambió.
func (uc *AlertUseCase) Refresh(ctx context.Context, productID string) (bool, error) {
	var changed bool
	err := uc.exec.write(ctx, "refresh_alert", func(ctx context.Context, r Repos) error {
		changed = false
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		rec, err := r.Stock.Get(ctx, productID)
		if err != nil {
			return err
		}
		next := rec.Clone()
		if !inventory.RefreshAlert(next, product.Thresholds(), uc.exec.now(), uc.exec.opts.ExpiryWindowDays) {
			return nil
		}
		if err := uc.exec.saveAlert(ctx, r, rec, next); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}

// RefreshAll reevalúa todos los productos con registro de stock; devuelve cuántos cambiaron.
func (uc *AlertUseCase) RefreshAll(ctx context.Context) (int, error) {
	var ids []string
	err := uc.exec.read(ctx, "list_stock_ids", func(ctx context.Context, r Repos) error {
		var err error
		ids, err = r.Stock.ListProductIDs(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, id := range ids {
		ok, err := uc.Refresh(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

// saveAlert es la única escritura del stock fuera de record: guarda la bandera y el tipo de alerta
// con el mismo compare-and-swap y rechaza cualquier cambio de cantidades o valor.
func (e *executor) saveAlert(ctx context.Context, r Repos, prev, next *entity.StockRecord) error {
	if !next.QuantityTotal.Equal(prev.QuantityTotal) ||
		!next.QuantityAvailable.Equal(prev.QuantityAvailable) ||
		!next.QuantityReserved.Equal(prev.QuantityReserved) ||
		!next.InventoryValue.Equal(prev.InventoryValue) {
		return fmt.Errorf("reevaluar alerta de %s no puede cambiar cantidades: %w", prev.ProductID, domain.ErrInvalidState)
	}
	return r.Stock.CompareAndSwap(ctx, next, prev.Version)
}
