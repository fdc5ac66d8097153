package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingreso representa una recepción de mercancía, desde su creación hasta su validación o anulación.
type Ingreso struct {
	ID                int64
	ReceiptNumber     string // ING-YYYYMM-0001
	ProductID         string
	Supplier          string
	PurchaseOrder     string
	Invoice           string
	QuantityRequested decimal.Decimal
	QuantityReceived  decimal.Decimal
	UnitCost          decimal.Decimal
	TotalCost         decimal.Decimal
	Batch             string
	ExpiryDate        *time.Time
	Location          string
	Document          string
	Notes             string
	Condition         Condition
	Active            bool
	ReceivedAt        *time.Time
	CreatedAt         time.Time
	CreatedBy         string
	CreatedByName     string
	ValidatedBy       string
	ValidatedByName   string
	UpdatedAt         time.Time
	UpdatedBy         string
	UpdatedByName     string
}

// Clone devuelve una copia profunda.
func (i *Ingreso) Clone() *Ingreso {
	c := *i
	if i.ExpiryDate != nil {
		t := *i.ExpiryDate
		c.ExpiryDate = &t
	}
	if i.ReceivedAt != nil {
		t := *i.ReceivedAt
		c.ReceivedAt = &t
	}
	return &c
}
