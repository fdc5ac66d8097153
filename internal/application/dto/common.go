package dto

import "github.com/jhoicas/kardex-api/internal/application/inventory"

// PaginationDTO metadatos de página en respuestas.
type PaginationDTO struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// ToPaginationDTO convierte la página del caso de uso.
func ToPaginationDTO(p inventory.Page) PaginationDTO {
	return PaginationDTO{Page: p.Number, Limit: p.Limit, Total: p.Total, Pages: p.Pages, HasNext: p.HasNext, HasPrev: p.HasPrev}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError detalle de un campo inválido.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ActorDTO usuario que realizó o autorizó una operación.
type ActorDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
