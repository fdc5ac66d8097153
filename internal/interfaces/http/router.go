package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *inventory.LedgerUseCase
	Ingresos       *inventory.IngresoUseCase
	Queries        *inventory.KardexQueryUseCase
	Alerts         *inventory.AlertUseCase
	Reconciliation *inventory.ReconciliationUseCase
	JWTSecret      string
	Log            *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	writers := RequireRole(RoleAdmin, RoleBodeguero)
	readers := RequireRole(RoleAdmin, RoleBodeguero, RoleAuditor)

	// Kardex
	kardexHandler := NewKardexHandler(deps.Queries, deps.Ledger, log)
	kardex := api.Group("/kardex")
	kardex.Get("/", readers, kardexHandler.List)
	kardex.Get("/movements/:movement_number", readers, kardexHandler.Trace)
	kardex.Get("/items/:item_id", readers, kardexHandler.ByProduct)
	kardex.Post("/movements", writers, kardexHandler.Record)

	// Stock (alerts antes de :item_id)
	stockHandler := NewStockHandler(deps.Queries, deps.Alerts, deps.Ledger, log)
	stock := api.Group("/stock")
	stock.Get("/", readers, stockHandler.List)
	stock.Get("/alerts", readers, stockHandler.Alerts)
	stock.Post("/adjust", RequireRole(RoleAdmin), stockHandler.Adjust)
	stock.Get("/:item_id", readers, stockHandler.Get)

	// Ingresos (pending, search y masivo antes de :id)
	ingresoHandler := NewIngresoHandler(deps.Ingresos, log)
	ingresos := api.Group("/ingresos")
	ingresos.Post("/", writers, ingresoHandler.Create)
	ingresos.Post("/masivo", writers, ingresoHandler.CreateBulk)
	ingresos.Get("/", readers, ingresoHandler.List)
	ingresos.Get("/pending", readers, ingresoHandler.Pending)
	ingresos.Get("/search", readers, ingresoHandler.Search)
	ingresos.Get("/:id", readers, ingresoHandler.Get)
	ingresos.Put("/:id", writers, ingresoHandler.Update)
	ingresos.Post("/:id/validate", writers, ingresoHandler.Validate)
	ingresos.Post("/:id/cancel", writers, ingresoHandler.Cancel)

	// Conciliación
	recHandler := NewReconciliationHandler(deps.Reconciliation, log)
	rec := api.Group("/reconciliation", RequireRole(RoleAdmin, RoleAuditor))
	rec.Get("/", recHandler.All)
	rec.Get("/:item_id", recHandler.ByProduct)
}
