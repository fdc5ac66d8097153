package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
)

// cleanText recorta y normaliza a NFC los textos libres que quedan en la auditoría
// (proveedor, motivo, observaciones), para que "Peña" compuesto y descompuesto sean iguales.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// checkQuantity rechaza cantidades que la base redondearía (más de 4 decimales) o no podría guardar.
func checkQuantity(field string, v decimal.Decimal) error {
	if inventory.FitsQuantity(v) {
		return nil
	}
	return domain.NewValidationError(field, fmt.Sprintf("admite hasta %d decimales y %d dígitos enteros",
		inventory.QuantityScale, inventory.QuantityPrecision-inventory.QuantityScale))
}

func checkCost(field string, v decimal.Decimal) error {
	if inventory.FitsCost(v) {
		return nil
	}
	return domain.NewValidationError(field, fmt.Sprintf("admite hasta %d decimales y %d dígitos enteros",
		inventory.CostScale, inventory.CostPrecision-inventory.CostScale))
}

func checkValue(field string, v decimal.Decimal) error {
	if inventory.FitsValue(v) {
		return nil
	}
	return domain.NewValidationError(field, fmt.Sprintf("el valor total excede %d dígitos enteros",
		inventory.ValuePrecision-inventory.CostScale))
}
