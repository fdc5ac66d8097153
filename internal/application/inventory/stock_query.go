package inventory

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Niveles de stock frente a los umbrales del producto.
const (
	LevelNormal  = "normal"
	LevelBajo    = "bajo"
	LevelCritico = "critico"
)

// StockQuery filtros del listado general de stock.
type StockQuery struct {
	Low      bool
	Critical bool
	Page     int
	Limit    int
}

// StockItem registro de stock con su producto y el nivel frente a los umbrales.
type StockItem struct {
	Record  *entity.StockRecord
	Product *entity.Product
	Level   string
}

// StockPage página del listado de stock.
type StockPage struct {
	Items []StockItem
	Page  Page
}

// ListStock lista el stock de los productos activos ordenado por nombre de producto.
// Low deja los que están en o bajo el mínimo; Critical los que están en o bajo el crítico.
func (uc *KardexQueryUseCase) ListStock(ctx context.Context, q StockQuery) (*StockPage, error) {
	p := NewPage(q.Page, q.Limit)
	f := repository.StockFilter{Low: q.Low, Critical: q.Critical, Limit: p.Limit, Offset: p.Offset()}

	var out StockPage
	err := uc.exec.read(ctx, "list_stock", func(ctx context.Context, r Repos) error {
		views, total, err := r.Stock.List(ctx, f)
		if err != nil {
			return err
		}
		out.Items = make([]StockItem, 0, len(views))
		for _, v := range views {
			out.Items = append(out.Items, StockItem{Record: v.Record, Product: v.Product, Level: stockLevel(v.Record, v.Product)})
		}
		out.Page = p.WithTotal(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func stockLevel(rec *entity.StockRecord, p *entity.Product) string {
	switch {
	case rec.QuantityTotal.LessThanOrEqual(p.StockCritico):
		return LevelCritico
	case rec.QuantityTotal.LessThanOrEqual(p.StockMinimo):
		return LevelBajo
	}
	return LevelNormal
}
