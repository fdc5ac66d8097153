package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord es el agregado de stock de un producto. Nunca se elimina, solo se desactiva.
// QuantityTotal = QuantityAvailable + QuantityReserved; InventoryValue = QuantityTotal * AverageCost.
type StockRecord struct {
	ProductID         string
	QuantityAvailable decimal.Decimal
	QuantityReserved  decimal.Decimal
	QuantityTotal     decimal.Decimal
	AverageCost       decimal.Decimal
	InventoryValue    decimal.Decimal
	Batch             string
	ExpiryDate        *time.Time
	Location          string
	LastMovementAt    *time.Time
	Active            bool
	Alert             bool
	AlertKind         AlertKind
	Version           int64 // control optimista
	CreatedAt         time.Time
	UpdatedAt         time.Time
	UpdatedBy         string
	UpdatedByName     string
}

// NewStockRecord crea el registro inicial en cero para un producto activo.
func NewStockRecord(productID, location string, now time.Time) *StockRecord {
	return &StockRecord{
		ProductID:         productID,
		QuantityAvailable: decimal.Zero,
		QuantityReserved:  decimal.Zero,
		QuantityTotal:     decimal.Zero,
		AverageCost:       decimal.Zero,
		InventoryValue:    decimal.Zero,
		Location:          location,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Clone devuelve una copia profunda (los punteros de fecha no se comparten).
func (s *StockRecord) Clone() *StockRecord {
	c := *s
	if s.ExpiryDate != nil {
		t := *s.ExpiryDate
		c.ExpiryDate = &t
	}
	if s.LastMovementAt != nil {
		t := *s.LastMovementAt
		c.LastMovementAt = &t
	}
	return &c
}
