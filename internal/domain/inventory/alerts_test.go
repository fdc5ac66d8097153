package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
)

func TestEvaluateAlert_Umbrales(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		flag  bool
		kind  entity.AlertKind
	}{
		{"sobre el mínimo", 11, false, entity.AlertNone},
		{"igual al mínimo", 10, true, entity.AlertBajo},
		{"entre crítico y mínimo", 7, true, entity.AlertBajo},
		{"igual al crítico", 5, true, entity.AlertCritico},
		{"en cero", 0, true, entity.AlertCritico},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := inventory.EvaluateAlert(recordWith(tc.total), thresholds, testNow, 30)
			assert.Equal(t, tc.flag, a.Flag)
			assert.Equal(t, tc.kind, a.Kind)
		})
	}
}

func TestEvaluateAlert_Vencimiento(t *testing.T) {
	rec := recordWith(100)

	exp := testNow.AddDate(0, 0, 30)
	rec.ExpiryDate = &exp
	assert.Equal(t, entity.AlertPorVencer, inventory.EvaluateAlert(rec, thresholds, testNow, 30).Kind, "30 días está dentro de la ventana")

	exp = testNow.AddDate(0, 0, 31)
	rec.ExpiryDate = &exp
	assert.False(t, inventory.EvaluateAlert(rec, thresholds, testNow, 30).Flag)

	exp = testNow.AddDate(0, 0, -1)
	rec.ExpiryDate = &exp
	assert.Equal(t, entity.AlertVencido, inventory.EvaluateAlert(rec, thresholds, testNow, 30).Kind)

	exp = testNow.Add(2 * time.Hour)
	rec.ExpiryDate = &exp
	assert.Equal(t, entity.AlertPorVencer, inventory.EvaluateAlert(rec, thresholds, testNow, 30).Kind, "vence hoy: aún no vencido")
}

func TestRefreshAlert_SoloCambiaSiHayDiferencia(t *testing.T) {
	rec := recordWith(100)
	assert.False(t, inventory.RefreshAlert(rec, thresholds, testNow, 30), "sin alerta y sin cambios")

	rec.QuantityTotal = d(3)
	assert.True(t, inventory.RefreshAlert(rec, thresholds, testNow, 30))
	assert.Equal(t, entity.AlertCritico, rec.AlertKind)
	assert.False(t, inventory.RefreshAlert(rec, thresholds, testNow, 30), "segunda evaluación no cambia nada")
}
