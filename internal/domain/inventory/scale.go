package inventory

import "github.com/shopspring/decimal"

// Precisión de las columnas: cantidades NUMERIC(18,4), costos NUMERIC(18,6), valores NUMERIC(20,6).
const (
	QuantityPrecision = 18
	QuantityScale     = 4
	CostPrecision     = 18
	CostScale         = 6
	ValuePrecision    = 20
)

// FitsNumeric indica si v se guarda en NUMERIC(precision, scale) sin redondeo ni desborde.
func FitsNumeric(v decimal.Decimal, precision, scale int32) bool {
	if !v.Equal(v.Truncate(scale)) {
		return false
	}
	limit := decimal.New(1, precision-scale)
	return v.Abs().LessThan(limit)
}

// FitsQuantity aplica FitsNumeric con la precisión de las cantidades.
func FitsQuantity(v decimal.Decimal) bool {
	return FitsNumeric(v, QuantityPrecision, QuantityScale)
}

// FitsCost aplica FitsNumeric con la precisión de los costos.
func FitsCost(v decimal.Decimal) bool {
	return FitsNumeric(v, CostPrecision, CostScale)
}

// FitsValue indica si un valor monetario (cantidad por costo) cabe en NUMERIC(20,6).
// Los decimales sobrantes se redondean al guardar, solo se valida la magnitud.
func FitsValue(v decimal.Decimal) bool {
	return FitsNumeric(v.Round(CostScale), ValuePrecision, CostScale)
}
