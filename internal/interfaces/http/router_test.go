package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/kardex-api/internal/interfaces/http"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

const itemID = "prod-001"

func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	store.PutProduct(&entity.Product{
		ID: itemID, Code: "P-001", Name: "Guantes nitrilo", Active: true,
		StockMinimo: decimal.NewFromInt(10), StockCritico: decimal.NewFromInt(5), StockMaximo: decimal.NewFromInt(200),
		DefaultUnitCost: decimal.NewFromInt(3), Location: "A-01",
	})
	log := logger.Nop()
	opts := inventory.Options{}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:         inventory.NewLedgerUseCase(store, log, opts),
		Ingresos:       inventory.NewIngresoUseCase(store, log, opts),
		Queries:        inventory.NewKardexQueryUseCase(store, log, opts),
		Alerts:         inventory.NewAlertUseCase(store, log, opts),
		Reconciliation: inventory.NewReconciliationUseCase(store, log, opts),
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any, headers ...string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, role))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAPI_IngresoValidadoLlegaAlKardex(t *testing.T) {
	app := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/ingresos", apphttp.RoleBodeguero, map[string]any{
		"product_id": itemID, "supplier": "Distribuidora Andina", "invoice": "FV-889",
		"quantity_requested": 100, "unit_cost": 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.IngresoDTO](t, resp)
	assert.Equal(t, "creado", created.ConditionName)
	assert.Equal(t, int64(1), created.ID)

	resp = call(t, app, http.MethodGet, "/api/ingresos/pending", apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.IngresoListResponse](t, resp).Items, 1)

	resp = call(t, app, http.MethodPost, "/api/ingresos/1/validate", apphttp.RoleBodeguero, map[string]any{"quantity_received": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validated := decode[dto.ValidateIngresoResponse](t, resp)
	assert.Equal(t, "validado", validated.Ingreso.ConditionName)
	assert.Equal(t, "INGRESO", validated.Movement.Movement.OperationKind)
	assert.True(t, validated.Movement.Stock.QuantityTotal.Equal(decimal.NewFromInt(100)))

	// segunda validación: el ingreso ya no está en Creado
	resp = call(t, app, http.MethodPost, "/api/ingresos/1/validate", apphttp.RoleBodeguero, map[string]any{"quantity_received": 100})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodGet, "/api/kardex?product_id="+itemID, apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.KardexListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ReceiptNumber, list.Items[0].ReferenceDocument)

	resp = call(t, app, http.MethodGet, "/api/reconciliation/"+itemID, apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[dto.ReconciliationDTO](t, resp)
	assert.True(t, rec.Consistent)
	assert.True(t, rec.StockSistema.Equal(decimal.NewFromInt(100)))
}

func TestAPI_AjusteSoloAdminEIdempotente(t *testing.T) {
	app := newAPI(t)
	body := map[string]any{"product_id": itemID, "delta": 30, "reason": "saldo inicial"}

	resp := call(t, app, http.MethodPost, "/api/stock/adjust", apphttp.RoleBodeguero, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/stock/adjust", apphttp.RoleAdmin, body, apphttp.HeaderIdempotencyKey, "ajuste-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, "AJUSTE_POSITIVO", first.Movement.OperationKind)
	assert.False(t, first.Replayed)

	resp = call(t, app, http.MethodPost, "/api/stock/adjust", apphttp.RoleAdmin, body, apphttp.HeaderIdempotencyKey, "ajuste-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	again := decode[dto.MovementResponse](t, resp)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Movement.MovementNumber, again.Movement.MovementNumber)

	resp = call(t, app, http.MethodGet, "/api/stock/"+itemID, apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.StockDTO](t, resp).QuantityTotal.Equal(decimal.NewFromInt(30)))

	resp = call(t, app, http.MethodGet, "/api/kardex/movements/"+first.Movement.MovementNumber, apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	trace := decode[dto.TraceResponse](t, resp)
	assert.Equal(t, first.Movement.ID, trace.Movement.ID)
	assert.Empty(t, trace.Related)

	resp = call(t, app, http.MethodGet, "/api/kardex/items/"+itemID+"?limit=5", apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.KardexEntryDTO](t, resp), 1)

	// 30 unidades está sobre el mínimo (10): sin alertas
	resp = call(t, app, http.MethodGet, "/api/stock/alerts", apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.StockAlertDTO](t, resp))

	resp = call(t, app, http.MethodPost, "/api/stock/adjust", apphttp.RoleAdmin, map[string]any{"product_id": itemID, "delta": -31, "reason": "merma"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_ErroresDeEntrada(t *testing.T) {
	app := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/kardex/movements", apphttp.RoleAdmin, map[string]any{
		"product_id": itemID, "operation_kind": "ROBO", "movement_kind": "DESPACHO", "quantity": 1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", e.Code)
	require.NotEmpty(t, e.Fields)
	assert.Equal(t, "operation_kind", e.Fields[0].Field)

	resp = call(t, app, http.MethodGet, "/api/kardex?from=2024-13-01", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/kardex?from=2024-06-10&to=2024-06-01", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/ingresos/abc", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/ingresos/99", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/kardex/movements/KDX-20240601-000001", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, path := range []string{
		"/api/kardex?page=922337203685477581&limit=100",
		"/api/ingresos?page=922337203685477581&limit=100",
		"/api/kardex?page=99999999999999999999",
	} {
		resp = call(t, app, http.MethodGet, path, apphttp.RoleAdmin, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}

	resp = call(t, app, http.MethodGet, "/api/kardex?page=1000000&limit=100", apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.KardexListResponse](t, resp).Items)
}

func TestAPI_ConciliacionNoAbiertaABodeguero(t *testing.T) {
	app := newAPI(t)
	resp := call(t, app, http.MethodGet, "/api/reconciliation", apphttp.RoleBodeguero, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/reconciliation", apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[dto.ReconciliationReportDTO](t, resp).Drifted)
}

func TestAPI_ListadoDeStockYBusquedaDeIngresos(t *testing.T) {
	app := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/stock/adjust", apphttp.RoleAdmin, map[string]any{"product_id": itemID, "delta": 4, "reason": "saldo inicial"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/stock?stock_critico=true", apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.StockListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Guantes nitrilo", list.Items[0].ProductName)
	assert.Equal(t, "critico", list.Items[0].Level)
	assert.True(t, list.Items[0].QuantityTotal.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, int64(1), list.Pagination.Total)

	resp = call(t, app, http.MethodGet, "/api/stock?limit=500", apphttp.RoleAuditor, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/ingresos", apphttp.RoleBodeguero, map[string]any{
		"product_id": itemID, "supplier": "Distribuidora Andina", "invoice": "FV-889",
		"quantity_requested": 10, "unit_cost": 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/ingresos/search?supplier=ANDINA&product_code=p-001", apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[dto.IngresoListResponse](t, resp)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "FV-889", found.Items[0].Invoice)

	resp = call(t, app, http.MethodGet, "/api/ingresos/search?invoice=NC-", apphttp.RoleAuditor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.IngresoListResponse](t, resp).Items)

	resp = call(t, app, http.MethodGet, "/api/ingresos/search?from=2024-02-30", apphttp.RoleAuditor, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CargaMasivaDeIngresos(t *testing.T) {
	app := newAPI(t)
	items := []map[string]any{
		{"product_id": itemID, "supplier": "Distribuidora Andina", "quantity_requested": 10, "unit_cost": 4},
		{"product_id": "no-existe", "supplier": "Proveedor", "quantity_requested": 2, "unit_cost": 1},
		{"product_id": itemID, "supplier": "Importadora del Sur", "quantity_requested": 0, "unit_cost": 1},
	}

	resp := call(t, app, http.MethodPost, "/api/ingresos/masivo", apphttp.RoleAuditor, map[string]any{"items": items})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/ingresos/masivo", apphttp.RoleBodeguero, map[string]any{"items": items})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.BulkIngresoResponse](t, resp)
	assert.Equal(t, 3, out.TotalProcessed)
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, 2, out.Failed)
	assert.True(t, out.SuccessRate.Equal(decimal.RequireFromString("33.33")))
	assert.True(t, out.TotalValue.Equal(decimal.NewFromInt(40)))
	require.Len(t, out.Results, 1)
	assert.Equal(t, 1, out.Results[0].Index)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, 2, out.Errors[0].Index)
	assert.Equal(t, "NOT_FOUND", out.Errors[0].Code)
	assert.Equal(t, "no-existe", out.Errors[0].ProductID)
	assert.Equal(t, 3, out.Errors[1].Index)
	assert.Equal(t, "VALIDATION", out.Errors[1].Code)

	resp = call(t, app, http.MethodPost, "/api/ingresos/masivo", apphttp.RoleBodeguero, map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/ingresos/masivo", apphttp.RoleBodeguero, map[string]any{
		"items": []map[string]any{{"product_id": itemID, "supplier": "ab", "quantity_requested": 1, "unit_cost": 1}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[dto.ErrorResponse](t, resp)
	require.NotEmpty(t, e.Fields)
	assert.Equal(t, "items[0].supplier", e.Fields[0].Field)
}
