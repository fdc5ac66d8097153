package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/stock/adjust. delta con signo.
type AdjustStockRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	Delta        decimal.Decimal  `json:"delta"`
	Reason       string           `json:"reason" validate:"required,max=500"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	Batch        string           `json:"batch,omitempty" validate:"max=100"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
	Location     string           `json:"location,omitempty" validate:"max=100"`
	AuthorizedBy *ActorDTO        `json:"authorized_by,omitempty"`
}

// StockDTO registro de stock de un producto.
type StockDTO struct {
	ProductID         string          `json:"product_id"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	QuantityTotal     decimal.Decimal `json:"quantity_total"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	InventoryValue    decimal.Decimal `json:"inventory_value"`
	Batch             string          `json:"batch,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	Location          string          `json:"location,omitempty"`
	LastMovementAt    *time.Time      `json:"last_movement_at,omitempty"`
	Active            bool            `json:"active"`
	Alert             bool            `json:"alert"`
	AlertKind         string          `json:"alert_kind,omitempty"`
	Version           int64           `json:"version"`
	UpdatedAt         time.Time       `json:"updated_at"`
	UpdatedBy         *ActorDTO       `json:"updated_by,omitempty"`
}

// StockQueryParams filtros de GET /api/stock.
type StockQueryParams struct {
	Page     int  `query:"page" validate:"omitempty,min=1,max=1000000"`
	Limit    int  `query:"limit" validate:"omitempty,min=1,max=100"`
	Low      bool `query:"stock_bajo"`
	Critical bool `query:"stock_critico"`
}

// StockListItemDTO stock de un producto con sus umbrales. level: normal, bajo o critico.
type StockListItemDTO struct {
	StockDTO
	Code         string          `json:"code"`
	ProductName  string          `json:"product_name"`
	StockMinimo  decimal.Decimal `json:"stock_minimo"`
	StockCritico decimal.Decimal `json:"stock_critico"`
	StockMaximo  decimal.Decimal `json:"stock_maximo"`
	Level        string          `json:"level"`
}

// StockListResponse página del listado de stock.
type StockListResponse struct {
	Items      []StockListItemDTO `json:"items"`
	Pagination PaginationDTO      `json:"pagination"`
}

// StockAlertDTO alerta de stock con sugerencia de reposición.
type StockAlertDTO struct {
	ProductID         string          `json:"product_id"`
	Code              string          `json:"code"`
	ProductName       string          `json:"product_name"`
	AlertKind         string          `json:"alert_kind"`
	Urgency           string          `json:"urgency"`
	QuantityTotal     decimal.Decimal `json:"quantity_total"`
	StockMinimo       decimal.Decimal `json:"stock_minimo"`
	StockCritico      decimal.Decimal `json:"stock_critico"`
	StockMaximo       decimal.Decimal `json:"stock_maximo"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	DaysToExpiry      *int            `json:"days_to_expiry,omitempty"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
	Priority          int             `json:"priority"` // 1 = más urgente
}

// ToStockDTO convierte el registro de stock.
func ToStockDTO(r *entity.StockRecord) StockDTO {
	out := StockDTO{
		ProductID:         r.ProductID,
		QuantityAvailable: r.QuantityAvailable,
		QuantityReserved:  r.QuantityReserved,
		QuantityTotal:     r.QuantityTotal,
		AverageCost:       r.AverageCost,
		InventoryValue:    r.InventoryValue,
		Batch:             r.Batch,
		ExpiryDate:        r.ExpiryDate,
		Location:          r.Location,
		LastMovementAt:    r.LastMovementAt,
		Active:            r.Active,
		Alert:             r.Alert,
		AlertKind:         string(r.AlertKind),
		Version:           r.Version,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.UpdatedBy != "" {
		out.UpdatedBy = &ActorDTO{ID: r.UpdatedBy, Name: r.UpdatedByName}
	}
	return out
}

// ToStockAlertDTOs convierte las alertas.
func ToStockAlertDTOs(alerts []inventory.StockAlert) []StockAlertDTO {
	out := make([]StockAlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, StockAlertDTO{
			ProductID:         a.Record.ProductID,
			Code:              a.Product.Code,
			ProductName:       a.Product.Name,
			AlertKind:         string(a.Kind),
			Urgency:           a.Urgency,
			QuantityTotal:     a.Record.QuantityTotal,
			StockMinimo:       a.Product.StockMinimo,
			StockCritico:      a.Product.StockCritico,
			StockMaximo:       a.Product.StockMaximo,
			ExpiryDate:        a.Record.ExpiryDate,
			DaysToExpiry:      a.DaysToExpiry,
			SuggestedOrderQty: a.SuggestedOrderQty,
			Priority:          a.Priority,
		})
	}
	return out
}

// ToStockListResponse convierte una página del listado de stock.
func ToStockListResponse(p *inventory.StockPage) StockListResponse {
	items := make([]StockListItemDTO, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, StockListItemDTO{
			StockDTO:     ToStockDTO(it.Record),
			Code:         it.Product.Code,
			ProductName:  it.Product.Name,
			StockMinimo:  it.Product.StockMinimo,
			StockCritico: it.Product.StockCritico,
			StockMaximo:  it.Product.StockMaximo,
			Level:        it.Level,
		})
	}
	return StockListResponse{Items: items, Pagination: ToPaginationDTO(p.Page)}
}
