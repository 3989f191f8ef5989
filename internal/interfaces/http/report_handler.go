package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
	"github.com/jhoicas/koli-api/internal/domain"
)

const dateLayout = "2006-01-02"

// ReportHandler expone el reporte de kolis.
type ReportHandler struct {
	uc *appkoli.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *appkoli.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Refresh godoc
// @Summary      Recargar histórico
// @Tags         report
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReportResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/report/refresh [post]
func (h *ReportHandler) Refresh(c *fiber.Ctx) error {
	v, err := h.uc.Refresh(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReportResponse(*v, domain.Notice{}))
}

// Get godoc
// @Summary      Reporte filtrado por fechas
// @Description  Sin start ni end devuelve la vista actual. Con uno solo no filtra y advierte.
// @Tags         report
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end    query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {object}  dto.ReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/report [get]
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	start, err := h.parseDate(c.Query("start"))
	if err != nil {
		return writeError(c, err)
	}
	end, err := h.parseDate(c.Query("end"))
	if err != nil {
		return writeError(c, err)
	}
	if start == nil && end == nil {
		v, err := h.uc.Current(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toReportResponse(*v, domain.Notice{}))
	}
	res, err := h.uc.Filter(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReportResponse(res.View, res.Notice))
}

// Export godoc
// @Summary      Exportar reporte
// @Tags         report
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "pdf | xlsx"  default(xlsx)
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/report/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	format := strings.ToLower(c.Query("format", "xlsx"))
	out, name, contentType, err := h.uc.Export(c.UserContext(), format)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(out)
}

func (h *ReportHandler) parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, h.uc.Location())
	if err != nil {
		return nil, domain.Errorf(domain.ErrValidation, "fecha inválida %q, use YYYY-MM-DD", raw)
	}
	return &t, nil
}
