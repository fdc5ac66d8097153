package inventory

import (
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// DefaultExpiryWindowDays días antes del vencimiento en que se considera "por vencer".
const DefaultExpiryWindowDays = 30

// Alert resultado de evaluar un registro de stock.
type Alert struct {
	Flag bool
	Kind entity.AlertKind
}

// EvaluateAlert calcula la alerta de un registro de stock. Función pura.
// Prioridad del motivo: crítico, vencido, bajo, por vencer.
func EvaluateAlert(rec *entity.StockRecord, th entity.Thresholds, now time.Time, windowDays int) Alert {
	total := rec.QuantityTotal
	critico := total.LessThanOrEqual(th.Critico)
	bajo := total.LessThanOrEqual(th.Minimo)

	var vencido, porVencer bool
	if rec.ExpiryDate != nil && total.IsPositive() {
		days := DaysUntil(*rec.ExpiryDate, now)
		vencido = days < 0
		porVencer = !vencido && days <= windowDays
	}

	switch {
	case critico:
		return Alert{Flag: true, Kind: entity.AlertCritico}
	case vencido:
		return Alert{Flag: true, Kind: entity.AlertVencido}
	case bajo:
		return Alert{Flag: true, Kind: entity.AlertBajo}
	case porVencer:
		return Alert{Flag: true, Kind: entity.AlertPorVencer}
	}
	return Alert{}
}

// RefreshAlert aplica EvaluateAlert sobre rec y devuelve true si cambió algo.
func RefreshAlert(rec *entity.StockRecord, th entity.Thresholds, now time.Time, windowDays int) bool {
	a := EvaluateAlert(rec, th, now, windowDays)
	if rec.Alert == a.Flag && rec.AlertKind == a.Kind {
		return false
	}
	rec.Alert = a.Flag
	rec.AlertKind = a.Kind
	return true
}

// DaysUntil días calendario entre now y la fecha de vencimiento (negativo si ya pasó).
func DaysUntil(expiry, now time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(n).Hours() / 24)
}
