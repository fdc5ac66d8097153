package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidState      = errors.New("operación no permitida en el estado actual")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrConsistencyDrift lo reporta la conciliación; nunca bloquea otras operaciones.
	ErrConsistencyDrift = errors.New("diferencia entre kardex y stock")
	// ErrConcurrentUpdate indica que otro escritor cambió el registro (versión distinta).
	ErrConcurrentUpdate = errors.New("el registro fue modificado concurrentemente")
	// ErrTransient agrupa fallas de infraestructura reintentables (serialización, deadlock, conexión).
	ErrTransient = errors.New("falla transitoria de almacenamiento")
)

// ValidationError describe un campo inválido. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IsRetryable indica si el error amerita reintentar la operación completa.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrConcurrentUpdate)
}
