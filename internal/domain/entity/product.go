package entity

import "github.com/shopspring/decimal"

// Product es la vista de solo lectura del catálogo que necesita el kardex:
// estado activo, umbrales de alerta, costo por defecto y ubicación.
// El catálogo nunca modifica cantidades.
type Product struct {
	ID              string
	Code            string
	Name            string
	Active          bool
	StockMinimo     decimal.Decimal
	StockMaximo     decimal.Decimal
	StockCritico    decimal.Decimal
	DefaultUnitCost decimal.Decimal
	Location        string
}

// Thresholds umbrales de alerta de un producto.
type Thresholds struct {
	Minimo  decimal.Decimal
	Critico decimal.Decimal
	Maximo  decimal.Decimal
}

// Thresholds devuelve los umbrales del producto.
func (p *Product) Thresholds() Thresholds {
	return Thresholds{Minimo: p.StockMinimo, Critico: p.StockCritico, Maximo: p.StockMaximo}
}
