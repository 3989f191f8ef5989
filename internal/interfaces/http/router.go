package http

import (
	"github.com/gofiber/fiber/v2"

	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SessionUC  *appkoli.SessionUseCase
	DeletionUC *appkoli.DeletionUseCase
	ReportUC   *appkoli.ReportUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Alta y agregado: sesiones de escaneo
	sessions := api.Group("/sessions")
	sessionHandler := NewSessionHandler(deps.SessionUC)
	sessions.Post("/", sessionHandler.Open)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Delete("/:id", sessionHandler.Close)
	sessions.Post("/:id/container", sessionHandler.Container)
	sessions.Post("/:id/scan", sessionHandler.Scan)
	sessions.Post("/:id/save", sessionHandler.Save)
	sessions.Post("/:id/clear", sessionHandler.Clear)

	// Borrado: solo supervisores
	deletions := api.Group("/deletions", RequireRole(RoleSupervisor))
	deletionHandler := NewDeletionHandler(deps.DeletionUC)
	deletions.Get("/:container", deletionHandler.Get)
	deletions.Delete("/:container", deletionHandler.Clear)
	deletions.Post("/:container/list", deletionHandler.List)
	deletions.Delete("/:container/items/:barcode", deletionHandler.Delete)

	// Reporte
	report := api.Group("/report")
	reportHandler := NewReportHandler(deps.ReportUC)
	report.Get("/", reportHandler.Get)
	report.Post("/refresh", reportHandler.Refresh)
	report.Get("/export", reportHandler.Export)
}
