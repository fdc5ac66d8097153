package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/lock"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/kardex-api/internal/interfaces/http"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var txRunner inventory.TxRunner
	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		seedDemo(store)
		txRunner = store
		log.Warn().Msg("backend en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
	}

	opts := inventory.OptionsFromConfig(cfg.Ledger)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, log, opts)
	ingresoUC := inventory.NewIngresoUseCase(txRunner, log, opts)
	queryUC := inventory.NewKardexQueryUseCase(txRunner, log, opts)
	alertUC := inventory.NewAlertUseCase(txRunner, log, opts)
	reconUC := inventory.NewReconciliationUseCase(txRunner, log, opts)

	// Conciliación y refresco de alertas periódicos; con Redis solo una instancia corre a la vez.
	if cfg.Ledger.ReconcileInterval > 0 {
		var locker inventory.Locker = memory.NewLocker()
		if cfg.Redis.Enabled() {
			rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
			if err != nil {
				log.Fatal().Err(err).Msg("conexión a Redis")
			}
			defer rdb.Close()
			locker = lock.NewRedisLocker(rdb)
		}
		sweeper := inventory.NewSweeper(alertUC, reconUC, locker, cfg.Ledger.ReconcileInterval, log)
		go sweeper.Run(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Kardex API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:         ledgerUC,
		Ingresos:       ingresoUC,
		Queries:        queryUC,
		Alerts:         alertUC,
		Reconciliation: reconUC,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// seedDemo carga un producto de ejemplo para pruebas locales con STORAGE_DRIVER=memory.
func seedDemo(store *memory.Store) {
	store.PutProduct(&entity.Product{
		ID:              "demo-001",
		Code:            "DEMO-001",
		Name:            "Guantes de nitrilo talla M",
		Active:          true,
		StockMinimo:     decimal.NewFromInt(10),
		StockCritico:    decimal.NewFromInt(5),
		StockMaximo:     decimal.NewFromInt(200),
		DefaultUnitCost: decimal.NewFromInt(3),
		Location:        "A-01",
	})
}
