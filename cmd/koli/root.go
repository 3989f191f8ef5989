package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/koli-api/internal/infrastructure/inventorysvc"
	"github.com/jhoicas/koli-api/pkg/config"
	"github.com/jhoicas/koli-api/pkg/logger"
)

// env dependencias comunes de los subcomandos.
type env struct {
	cfg    *config.Config
	log    *logger.Logger
	client *inventorysvc.Client
}

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "koli",
		Short: "Herramientas de operación del servicio de kolis",
		Long: `koli opera contra el mismo servicio de inventario que la API.

La configuración se lee de las mismas variables de entorno (INVENTORY_BASE_URL,
REPORT_TIMEZONE, JWT_SECRET, ...) o de un archivo .env en el directorio actual.

Ejemplos:
  koli report --start 2025-03-01 --end 2025-03-31 --format xlsx
  koli contents K-000123
  koli token --operator 12 --role supervisor`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log de depuración en stderr")

	root.AddCommand(newReportCmd(), newContentsCmd(), newTokenCmd())
	return root
}

// loadEnv carga configuración, logger y cliente del servicio de inventario.
func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	var out io.Writer = io.Discard
	level := cfg.Log.Level
	if verbose {
		out = os.Stderr
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Output: out})

	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, err
	}
	client := inventorysvc.New(inventorysvc.Config{
		BaseURL:  cfg.Inventory.BaseURL,
		Timeout:  cfg.Inventory.Timeout(),
		Location: loc,
	}, log)
	return &env{cfg: cfg, log: log, client: client}, nil
}
