package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// CreateIngresoRequest body para POST /api/ingresos.
type CreateIngresoRequest struct {
	ProductID         string          `json:"product_id" validate:"required"`
	Supplier          string          `json:"supplier" validate:"required,min=3,max=200"`
	PurchaseOrder     string          `json:"purchase_order,omitempty" validate:"max=100"`
	Invoice           string          `json:"invoice,omitempty" validate:"max=100"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Batch             string          `json:"batch,omitempty" validate:"max=100"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	Location          string          `json:"location,omitempty" validate:"max=100"`
	Document          string          `json:"document,omitempty" validate:"max=500"`
	Notes             string          `json:"notes,omitempty" validate:"max=1000"`
}

// UpdateIngresoRequest body para PUT /api/ingresos/:id. Campos ausentes no cambian.
type UpdateIngresoRequest struct {
	Supplier          *string          `json:"supplier,omitempty" validate:"omitempty,min=3,max=200"`
	PurchaseOrder     *string          `json:"purchase_order,omitempty" validate:"omitempty,max=100"`
	Invoice           *string          `json:"invoice,omitempty" validate:"omitempty,max=100"`
	QuantityRequested *decimal.Decimal `json:"quantity_requested,omitempty"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	Batch             *string          `json:"batch,omitempty" validate:"omitempty,max=100"`
	ExpiryDate        *time.Time       `json:"expiry_date,omitempty"`
	Location          *string          `json:"location,omitempty" validate:"omitempty,max=100"`
	Document          *string          `json:"document,omitempty" validate:"omitempty,max=500"`
	Notes             *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ValidateIngresoRequest body para POST /api/ingresos/:id/validate.
type ValidateIngresoRequest struct {
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	Notes            string          `json:"notes,omitempty" validate:"max=1000"`
	Location         string          `json:"location,omitempty" validate:"max=100"`
}

// CancelIngresoRequest body para POST /api/ingresos/:id/cancel.
type CancelIngresoRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// IngresoQueryParams filtros de GET /api/ingresos.
type IngresoQueryParams struct {
	Page      int    `query:"page" validate:"omitempty,min=1,max=1000000"`
	Limit     int    `query:"limit" validate:"omitempty,min=1"`
	Condition *int   `query:"condition" validate:"omitempty,min=0,max=3"`
	ProductID string `query:"product_id"`
}

// IngresoSearchParams criterios de GET /api/ingresos/search. Los textos buscan por subcadena.
type IngresoSearchParams struct {
	ReceiptNumber string `query:"receipt_number" validate:"max=50"`
	ProductCode   string `query:"product_code" validate:"max=100"`
	Supplier      string `query:"supplier" validate:"max=200"`
	Invoice       string `query:"invoice" validate:"max=100"`
	Condition     *int   `query:"condition" validate:"omitempty,min=0,max=3"`
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Page          int    `query:"page" validate:"omitempty,min=1,max=1000000"`
	Limit         int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// BulkIngresoRequest body para POST /api/ingresos/masivo.
type BulkIngresoRequest struct {
	Items []CreateIngresoRequest `json:"items" validate:"required,min=1,max=1000,dive"`
}

// BulkIngresoResultDTO ingreso creado en la carga. index empieza en 1.
type BulkIngresoResultDTO struct {
	Index             int             `json:"index"`
	ID                int64           `json:"id"`
	ReceiptNumber     string          `json:"receipt_number"`
	ProductID         string          `json:"product_id"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	TotalCost         decimal.Decimal `json:"total_cost"`
}

// BulkIngresoErrorDTO elemento rechazado con el mismo código de error que la API individual.
type BulkIngresoErrorDTO struct {
	Index             int             `json:"index"`
	Code              string          `json:"code"`
	Message           string          `json:"message"`
	ProductID         string          `json:"product_id"`
	Supplier          string          `json:"supplier"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
}

// BulkIngresoResponse resumen de la carga masiva. success_rate en porcentaje con dos decimales.
type BulkIngresoResponse struct {
	TotalProcessed int                    `json:"total_processed"`
	Succeeded      int                    `json:"succeeded"`
	Failed         int                    `json:"failed"`
	SuccessRate    decimal.Decimal        `json:"success_rate"`
	TotalValue     decimal.Decimal        `json:"total_value"`
	TotalQuantity  decimal.Decimal        `json:"total_quantity"`
	Results        []BulkIngresoResultDTO `json:"results"`
	Errors         []BulkIngresoErrorDTO  `json:"errors"`
	ProcessedAt    time.Time              `json:"processed_at"`
}

// IngresoDTO ingreso de mercancía. condition es el código 0..3; condition_name su nombre.
type IngresoDTO struct {
	ID                int64           `json:"id"`
	ReceiptNumber     string          `json:"receipt_number"`
	ProductID         string          `json:"product_id"`
	Supplier          string          `json:"supplier"`
	PurchaseOrder     string          `json:"purchase_order,omitempty"`
	Invoice           string          `json:"invoice,omitempty"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Batch             string          `json:"batch,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	Location          string          `json:"location,omitempty"`
	Document          string          `json:"document,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Condition         int             `json:"condition"`
	ConditionName     string          `json:"condition_name"`
	ReceivedAt        *time.Time      `json:"received_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	CreatedBy         ActorDTO        `json:"created_by"`
	ValidatedBy       *ActorDTO       `json:"validated_by,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
	UpdatedBy         *ActorDTO       `json:"updated_by,omitempty"`
}

// IngresoListResponse página de ingresos.
type IngresoListResponse struct {
	Items      []IngresoDTO  `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}

// ValidateIngresoResponse ingreso validado y movimiento generado.
type ValidateIngresoResponse struct {
	Ingreso  IngresoDTO       `json:"ingreso"`
	Movement MovementResponse `json:"movement"`
}

// ToIngresoDTO convierte un ingreso.
func ToIngresoDTO(in *entity.Ingreso) IngresoDTO {
	out := IngresoDTO{
		ID:                in.ID,
		ReceiptNumber:     in.ReceiptNumber,
		ProductID:         in.ProductID,
		Supplier:          in.Supplier,
		PurchaseOrder:     in.PurchaseOrder,
		Invoice:           in.Invoice,
		QuantityRequested: in.QuantityRequested,
		QuantityReceived:  in.QuantityReceived,
		UnitCost:          in.UnitCost,
		TotalCost:         in.TotalCost,
		Batch:             in.Batch,
		ExpiryDate:        in.ExpiryDate,
		Location:          in.Location,
		Document:          in.Document,
		Notes:             in.Notes,
		Condition:         int(in.Condition),
		ConditionName:     in.Condition.String(),
		ReceivedAt:        in.ReceivedAt,
		CreatedAt:         in.CreatedAt,
		CreatedBy:         ActorDTO{ID: in.CreatedBy, Name: in.CreatedByName},
		UpdatedAt:         in.UpdatedAt,
	}
	if in.ValidatedBy != "" {
		out.ValidatedBy = &ActorDTO{ID: in.ValidatedBy, Name: in.ValidatedByName}
	}
	if in.UpdatedBy != "" {
		out.UpdatedBy = &ActorDTO{ID: in.UpdatedBy, Name: in.UpdatedByName}
	}
	return out
}

// ToIngresoListResponse convierte una página de ingresos.
func ToIngresoListResponse(p *inventory.IngresoPage) IngresoListResponse {
	items := make([]IngresoDTO, 0, len(p.Items))
	for _, in := range p.Items {
		items = append(items, ToIngresoDTO(in))
	}
	return IngresoListResponse{Items: items, Pagination: ToPaginationDTO(p.Page)}
}

// ToCreateIngresoInput convierte el body de creación.
func ToCreateIngresoInput(req CreateIngresoRequest) inventory.CreateIngresoInput {
	return inventory.CreateIngresoInput{
		ProductID:         req.ProductID,
		Supplier:          req.Supplier,
		PurchaseOrder:     req.PurchaseOrder,
		Invoice:           req.Invoice,
		QuantityRequested: req.QuantityRequested,
		UnitCost:          req.UnitCost,
		Batch:             req.Batch,
		ExpiryDate:        req.ExpiryDate,
		Location:          req.Location,
		Document:          req.Document,
		Notes:             req.Notes,
	}
}

// ToBulkIngresoResponse arma el resumen; errCode traduce cada error a código y mensaje públicos.
func ToBulkIngresoResponse(res *inventory.BulkResult, errCode func(error) (string, string)) BulkIngresoResponse {
	out := BulkIngresoResponse{
		TotalProcessed: len(res.Items),
		Succeeded:      res.Succeeded,
		Failed:         res.Failed,
		SuccessRate:    res.SuccessRate(),
		TotalValue:     res.TotalValue,
		TotalQuantity:  res.TotalQuantity,
		Results:        make([]BulkIngresoResultDTO, 0, res.Succeeded),
		Errors:         make([]BulkIngresoErrorDTO, 0, res.Failed),
		ProcessedAt:    res.ProcessedAt,
	}
	for _, it := range res.Items {
		if it.Err != nil {
			code, msg := errCode(it.Err)
			out.Errors = append(out.Errors, BulkIngresoErrorDTO{
				Index:             it.Index,
				Code:              code,
				Message:           msg,
				ProductID:         it.Input.ProductID,
				Supplier:          it.Input.Supplier,
				QuantityRequested: it.Input.QuantityRequested,
			})
			continue
		}
		out.Results = append(out.Results, BulkIngresoResultDTO{
			Index:             it.Index,
			ID:                it.Ingreso.ID,
			ReceiptNumber:     it.Ingreso.ReceiptNumber,
			ProductID:         it.Ingreso.ProductID,
			QuantityRequested: it.Ingreso.QuantityRequested,
			TotalCost:         it.Ingreso.TotalCost,
		})
	}
	return out
}
