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

	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
	"github.com/jhoicas/koli-api/internal/infrastructure/inventorysvc"
	infrapdf "github.com/jhoicas/koli-api/internal/infrastructure/pdf"
	"github.com/jhoicas/koli-api/internal/infrastructure/postgres"
	infraxlsx "github.com/jhoicas/koli-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/koli-api/internal/interfaces/http"
	"github.com/jhoicas/koli-api/pkg/config"
	"github.com/jhoicas/koli-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("inventory", cfg.Inventory.BaseURL).
		Msg("iniciando aplicación")

	loc, err := cfg.Report.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del reporte")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inventory := inventorysvc.New(inventorysvc.Config{
		BaseURL:  cfg.Inventory.BaseURL,
		Timeout:  cfg.Inventory.Timeout(),
		Location: loc,
	}, log)

	sessionOpts := []appkoli.SessionOption{appkoli.WithCallTimeout(cfg.Inventory.Timeout())}

	// Bitácora de envíos: opcional, solo si hay base de datos configurada.
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		journal := postgres.NewJournalRepository(pool, postgres.NewTxRunner(pool))
		if err := journal.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("esquema de bitácora")
		}
		sessionOpts = append(sessionOpts, appkoli.WithJournal(journal))
		log.Info().Msg("bitácora de envíos activa")
	}

	sessionUC := appkoli.NewSessionUseCase(inventory, log, sessionOpts...)
	deletionUC := appkoli.NewDeletionUseCase(inventory, log, cfg.Inventory.Timeout())
	reportUC := appkoli.NewReportUseCase(inventory, log, loc, cfg.Inventory.Timeout())
	reportUC.RegisterRenderer("pdf", infrapdf.NewMarotoReportRenderer())
	reportUC.RegisterRenderer("xlsx", infraxlsx.NewReportRenderer())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Koli API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SessionUC:  sessionUC,
		DeletionUC: deletionUC,
		ReportUC:   reportUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	if ttl := cfg.Session.IdleTTL(); ttl > 0 {
		go evictIdle(ctx, ttl, sessionUC.EvictIdle, deletionUC.EvictIdle)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// evictIdle descarta periódicamente las sesiones y los listados de borrado abandonados.
func evictIdle(ctx context.Context, ttl time.Duration, evictors ...func(time.Duration) int) {
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, evict := range evictors {
				evict(ttl)
			}
		}
	}
}
