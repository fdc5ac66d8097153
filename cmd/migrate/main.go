// Command migrate aplica el esquema del kardex: migrate [up|down|version].
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		v, dirty, verr := m.Version()
		if verr == nil {
			fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
		}
		err = verr
	default:
		fmt.Fprintf(os.Stderr, "uso: migrate [up|down|version]\n")
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("comando", cmd).Msg("migración fallida")
	}
}
