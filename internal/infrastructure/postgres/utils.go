package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/kardex-api/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// Restricciones CHECK que expresan falta de stock; las demás son entradas inválidas.
var insufficientStockChecks = map[string]bool{
	"stock_total_no_negativo":  true,
	"stock_reservado_cubierto": true,
}

// wrapErr agrega contexto y traduce errores de PostgreSQL: duplicado, falla transitoria
// (serialización, deadlock, conexión), stock negativo o valor fuera de rango.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrDuplicate, pgErr.ConstraintName)
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
		case codeCheckViolation:
			if insufficientStockChecks[pgErr.ConstraintName] {
				return fmt.Errorf("%s: %w: %s", op, domain.ErrInsufficientStock, pgErr.ConstraintName)
			}
			return fmt.Errorf("%s: %w: restricción %s", op, domain.ErrInvalidInput, pgErr.ConstraintName)
		case codeNumericOutOfRange:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pgErr.Message)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func notFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
