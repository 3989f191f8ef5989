package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/koli-api/internal/application/dto"
	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
	"github.com/jhoicas/koli-api/internal/domain"
)

// SessionHandler expone los flujos de alta y agregado (sesiones de escaneo).
type SessionHandler struct {
	uc *appkoli.SessionUseCase
}

// NewSessionHandler construye el handler.
func NewSessionHandler(uc *appkoli.SessionUseCase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir sesión de escaneo
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenSessionRequest  true  "Flujo: create | append"
// @Success      201   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sessions [post]
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	v, err := h.uc.Open(in.Workflow, GetOperatorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSessionResponse(*v, domain.Notice{}))
}

// Get godoc
// @Summary      Consultar sesión
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	v, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSessionResponse(*v, domain.Notice{}))
}

// Container godoc
// @Summary      Validar número de koli
// @Description  create acepta solo kolis nuevas; append solo existentes y carga su contenido.
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la sesión"
// @Param        body  body  dto.ContainerRequest   true  "Número de koli"
// @Success      200   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/container [post]
func (h *SessionHandler) Container(c *fiber.Ctx) error {
	var in dto.ContainerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.ValidateContainer(c.UserContext(), c.Params("id"), in.ContainerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSessionResponse(res.Session, res.Notice))
}

// Scan godoc
// @Summary      Escanear barkod
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID de la sesión"
// @Param        body  body  dto.ScanRequest  true  "Barkod"
// @Success      200   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/scan [post]
func (h *SessionHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Scan(c.UserContext(), c.Params("id"), in.Barcode)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSessionResponse(res.Session, res.Notice))
}

// Save godoc
// @Summary      Guardar contenido de la koli
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/save [post]
func (h *SessionHandler) Save(c *fiber.Ctx) error {
	res, err := h.uc.Save(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSessionResponse(res.Session, res.Notice))
}

// Clear godoc
// @Summary      Limpiar sesión
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/sessions/{id}/clear [post]
func (h *SessionHandler) Clear(c *fiber.Ctx) error {
	res, err := h.uc.Clear(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSessionResponse(res.Session, res.Notice))
}

// Close godoc
// @Summary      Descartar sesión
// @Tags         sessions
// @Security     Bearer
// @Param        id   path  string  true  "ID de la sesión"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id} [delete]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	if err := h.uc.Close(c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
