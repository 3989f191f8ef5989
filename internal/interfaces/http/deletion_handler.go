package http

import (
	"github.com/gofiber/fiber/v2"

	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
	"github.com/jhoicas/koli-api/internal/domain"
)

// DeletionHandler expone el flujo de borrado de líneas.
type DeletionHandler struct {
	uc *appkoli.DeletionUseCase
}

// NewDeletionHandler construye el handler.
func NewDeletionHandler(uc *appkoli.DeletionUseCase) *DeletionHandler {
	return &DeletionHandler{uc: uc}
}

// List godoc
// @Summary      Listar contenido de una koli para borrar
// @Tags         deletions
// @Security     Bearer
// @Produce      json
// @Param        container  path  string  true  "Número de koli"
// @Success      200  {object}  dto.DeletionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deletions/{container}/list [post]
func (h *DeletionHandler) List(c *fiber.Ctx) error {
	v, err := h.uc.List(c.UserContext(), c.Params("container"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDeletionResponse(*v, domain.Notice{}))
}

// Delete godoc
// @Summary      Borrar una línea por barkod
// @Description  Solo se borra un barkod presente en el último listado de la koli.
// @Tags         deletions
// @Security     Bearer
// @Produce      json
// @Param        container  path  string  true  "Número de koli"
// @Param        barcode    path  string  true  "Barkod"
// @Success      200  {object}  dto.DeletionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/deletions/{container}/items/{barcode} [delete]
func (h *DeletionHandler) Delete(c *fiber.Ctx) error {
	res, err := h.uc.Delete(c.UserContext(), c.Params("container"), c.Params("barcode"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDeletionResponse(res.View, res.Notice))
}

// Get godoc
// @Summary      Último listado en caché de una koli
// @Tags         deletions
// @Security     Bearer
// @Produce      json
// @Param        container  path  string  true  "Número de koli"
// @Success      200  {object}  dto.DeletionResponse
// @Router       /api/deletions/{container} [get]
func (h *DeletionHandler) Get(c *fiber.Ctx) error {
	return c.JSON(toDeletionResponse(h.uc.Snapshot(c.Params("container")), domain.Notice{}))
}

// Clear godoc
// @Summary      Limpiar el listado de una koli
// @Tags         deletions
// @Security     Bearer
// @Param        container  path  string  true  "Número de koli"
// @Success      204
// @Router       /api/deletions/{container} [delete]
func (h *DeletionHandler) Clear(c *fiber.Ctx) error {
	h.uc.Forget(c.Params("container"))
	return c.SendStatus(fiber.StatusNoContent)
}
