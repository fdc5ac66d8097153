package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/kardex/movements.
// El actor sale del token; authorized_by es opcional (quien aprobó la salida o el ajuste).
type RecordMovementRequest struct {
	ProductID         string           `json:"product_id" validate:"required"`
	OperationKind     string           `json:"operation_kind" validate:"required,oneof=INGRESO SALIDA DEVOLUCION AJUSTE_POSITIVO AJUSTE_NEGATIVO TRANSFERENCIA"`
	MovementKind      string           `json:"movement_kind" validate:"required,oneof=COMPRA DESPACHO DEVOLUCION AJUSTE TRANSFERENCIA"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason            string           `json:"reason" validate:"max=500"`
	ReferenceDocument string           `json:"reference_document,omitempty" validate:"max=100"`
	DocumentNumber    string           `json:"document_number,omitempty" validate:"max=100"`
	RequestID         string           `json:"request_id,omitempty" validate:"max=100"`
	WorkOrderNumber   string           `json:"work_order_number,omitempty" validate:"max=100"`
	Batch             string           `json:"batch,omitempty" validate:"max=100"`
	ExpiryDate        *time.Time       `json:"expiry_date,omitempty"`
	Location          string           `json:"location,omitempty" validate:"max=100"`
	AuthorizedBy      *ActorDTO        `json:"authorized_by,omitempty"`
}

// KardexQueryParams filtros de GET /api/kardex.
type KardexQueryParams struct {
	Page            int    `query:"page" validate:"omitempty,min=1,max=1000000"`
	Limit           int    `query:"limit" validate:"omitempty,min=1"`
	ProductID       string `query:"product_id"`
	OperationKind   string `query:"operation_kind"`
	MovementKind    string `query:"movement_kind"`
	IngresoID       int64  `query:"ingreso_id" validate:"omitempty,min=1"`
	RequestID       string `query:"request_id"`
	WorkOrderNumber string `query:"work_order_number"`
	From            string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To              string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// KardexEntryDTO movimiento del kardex.
type KardexEntryDTO struct {
	ID                int64           `json:"id"`
	MovementNumber    string          `json:"movement_number"`
	TransactionID     string          `json:"transaction_id"`
	ProductID         string          `json:"product_id"`
	OperationKind     string          `json:"operation_kind"`
	MovementKind      string          `json:"movement_kind"`
	QuantityBefore    decimal.Decimal `json:"quantity_before"`
	Quantity          decimal.Decimal `json:"quantity"`
	QuantityAfter     decimal.Decimal `json:"quantity_after"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Reason            string          `json:"reason"`
	ReferenceDocument string          `json:"reference_document,omitempty"`
	DocumentNumber    string          `json:"document_number,omitempty"`
	IngresoID         *int64          `json:"ingreso_id,omitempty"`
	RequestID         string          `json:"request_id,omitempty"`
	WorkOrderNumber   string          `json:"work_order_number,omitempty"`
	Batch             string          `json:"batch,omitempty"`
	Location          string          `json:"location,omitempty"`
	MovedAt           time.Time       `json:"moved_at"`
	Actor             ActorDTO        `json:"actor"`
	AuthorizedBy      *ActorDTO       `json:"authorized_by,omitempty"`
}

// KardexListResponse página del kardex.
type KardexListResponse struct {
	Items      []KardexEntryDTO `json:"items"`
	Pagination PaginationDTO    `json:"pagination"`
}

// MovementResponse resultado de registrar un movimiento.
type MovementResponse struct {
	Movement KardexEntryDTO `json:"movement"`
	Stock    StockDTO       `json:"stock"`
	Replayed bool           `json:"replayed"`
}

// TraceResponse movimiento con los últimos movimientos del mismo producto.
type TraceResponse struct {
	Movement KardexEntryDTO   `json:"movement"`
	Related  []KardexEntryDTO `json:"related"`
}

// ToKardexEntryDTO convierte un movimiento.
func ToKardexEntryDTO(e *entity.KardexEntry) KardexEntryDTO {
	out := KardexEntryDTO{
		ID:                e.ID,
		MovementNumber:    e.MovementNumber,
		TransactionID:     e.TransactionID,
		ProductID:         e.ProductID,
		OperationKind:     string(e.OperationKind),
		MovementKind:      string(e.MovementKind),
		QuantityBefore:    e.QuantityBefore,
		Quantity:          e.QuantityDelta,
		QuantityAfter:     e.QuantityAfter,
		UnitCost:          e.UnitCost,
		TotalCost:         e.TotalCost,
		Reason:            e.Reason,
		ReferenceDocument: e.ReferenceDocument,
		DocumentNumber:    e.DocumentNumber,
		IngresoID:         e.IngresoID,
		RequestID:         e.RequestID,
		WorkOrderNumber:   e.WorkOrderNumber,
		Batch:             e.Batch,
		Location:          e.Location,
		MovedAt:           e.MovedAt,
		Actor:             ActorDTO{ID: e.ActorID, Name: e.ActorName},
	}
	if e.AuthorizedByID != "" {
		out.AuthorizedBy = &ActorDTO{ID: e.AuthorizedByID, Name: e.AuthorizedByName}
	}
	return out
}

// ToKardexEntryDTOs convierte una lista de movimientos.
func ToKardexEntryDTOs(items []*entity.KardexEntry) []KardexEntryDTO {
	out := make([]KardexEntryDTO, 0, len(items))
	for _, e := range items {
		out = append(out, ToKardexEntryDTO(e))
	}
	return out
}

// ToMovementResponse convierte el resultado de un movimiento.
func ToMovementResponse(r *inventory.MovementResult) MovementResponse {
	return MovementResponse{Movement: ToKardexEntryDTO(r.Entry), Stock: ToStockDTO(r.Stock), Replayed: r.Replayed}
}
