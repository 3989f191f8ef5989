package koli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/koli-api/internal/application/ports"
	"github.com/jhoicas/koli-api/internal/domain"
	"github.com/jhoicas/koli-api/internal/domain/entity"
	domkoli "github.com/jhoicas/koli-api/internal/domain/koli"
	"github.com/jhoicas/koli-api/pkg/logger"
)

// ReportView vista actual del reporte: el filtro aplicado y sus filas.
type ReportView struct {
	Loaded     bool
	LedgerSize int
	FetchedAt  time.Time
	Start, End *time.Time
	Entries    []entity.LedgerEntry
}

// ReportResult resultado de un paso del reporte.
type ReportResult struct {
	View   ReportView
	Notice domain.Notice
}

// ledgerCache el histórico completo y la vista filtrada derivada. Se reemplaza entero al refrescar.
type ledgerCache struct {
	entries    []entity.LedgerEntry
	fetchedAt  time.Time
	filtered   []entity.LedgerEntry
	start, end *time.Time
}

// ReportUseCase trae el histórico una vez y filtra por fechas en memoria, sin volver a consultar.
type ReportUseCase struct {
	svc       ports.InventoryService
	log       *logger.Logger
	loc       *time.Location
	timeout   time.Duration
	renderers map[string]ports.ReportRenderer
	now       func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache *ledgerCache
}

// NewReportUseCase construye el caso de uso. loc es la zona en que se interpretan los días.
func NewReportUseCase(svc ports.InventoryService, log *logger.Logger, loc *time.Location, timeout time.Duration) *ReportUseCase {
	if loc == nil {
		loc = time.Local
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &ReportUseCase{
		svc:       svc,
		log:       log.Component("report"),
		loc:       loc,
		timeout:   timeout,
		renderers: make(map[string]ports.ReportRenderer),
		now:       time.Now,
	}
}

// RegisterRenderer habilita un formato de exportación (p. ej. "pdf", "xlsx").
func (uc *ReportUseCase) RegisterRenderer(format string, r ports.ReportRenderer) {
	uc.renderers[format] = r
}

// Location devuelve la zona horaria del reporte.
func (uc *ReportUseCase) Location() *time.Location { return uc.loc }

// Refresh trae el histórico completo y reemplaza la caché; la vista filtrada vuelve a ser el total.
// Refrescos concurrentes comparten una sola consulta.
func (uc *ReportUseCase) Refresh(ctx context.Context) (*ReportView, error) {
	v, err, shared := uc.group.Do("ledger", func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
		defer cancel()
		res, err := uc.svc.ListAllContents(callCtx)
		if err != nil {
			return nil, transportError("histórico", err)
		}
		if !res.OK() {
			return nil, domain.Errorf(domain.ErrServer, "no se pudieron obtener los datos")
		}
		entries := make([]entity.LedgerEntry, len(res.Entries))
		copy(entries, res.Entries)
		c := &ledgerCache{entries: entries, fetchedAt: uc.now(), filtered: entries}
		uc.mu.Lock()
		uc.cache = c
		uc.mu.Unlock()
		return c, nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Msg("refresco del histórico fallido")
		return nil, err
	}
	c := v.(*ledgerCache)
	uc.log.Info().Int("entries", len(c.entries)).Bool("shared", shared).Msg("histórico cargado")
	view := c.view()
	return &view, nil
}

// Filter aplica el rango [start, end] por días calendario. Si falta alguno de los dos
// límites no filtra: devuelve la vista anterior con una advertencia.
func (uc *ReportUseCase) Filter(ctx context.Context, start, end *time.Time) (*ReportResult, error) {
	c, err := uc.loaded(ctx)
	if err != nil {
		return nil, err
	}
	if start == nil || end == nil {
		return &ReportResult{
			View:   c.view(),
			Notice: domain.Notice{Message: "Seleccione ambas fechas.", Severity: domain.SeverityWarning},
		}, nil
	}

	filtered := domkoli.FilterLedger(c.entries, *start, *end, uc.loc)
	from, to := domkoli.DayBounds(*start, *end, uc.loc)
	next := &ledgerCache{
		entries:   c.entries,
		fetchedAt: c.fetchedAt,
		filtered:  filtered,
		start:     &from,
		end:       &to,
	}
	uc.mu.Lock()
	// Un refresco concurrente gana: solo se guarda el filtro si la caché no cambió.
	if uc.cache == c {
		uc.cache = next
	}
	uc.mu.Unlock()

	return &ReportResult{
		View:   next.view(),
		Notice: domain.Notice{Message: fmt.Sprintf("%d registros.", len(filtered)), Severity: domain.SeverityInfo},
	}, nil
}

// Current devuelve la vista actual, cargando el histórico si aún no se hizo.
func (uc *ReportUseCase) Current(ctx context.Context) (*ReportView, error) {
	c, err := uc.loaded(ctx)
	if err != nil {
		return nil, err
	}
	v := c.view()
	return &v, nil
}

// Export genera la vista filtrada actual en el formato pedido y devuelve bytes, nombre y content-type.
func (uc *ReportUseCase) Export(ctx context.Context, format string) ([]byte, string, string, error) {
	r, ok := uc.renderers[format]
	if !ok {
		return nil, "", "", domain.Errorf(domain.ErrValidation, "formato de exportación no soportado: %q", format)
	}
	c, err := uc.loaded(ctx)
	if err != nil {
		return nil, "", "", err
	}
	now := uc.now()
	doc := ports.ReportDocument{
		Title:       "Reporte de kolis",
		Start:       c.start,
		End:         c.end,
		GeneratedAt: now,
		Entries:     c.filtered,
		Location:    uc.loc,
	}
	out, err := r.Render(ctx, doc)
	if err != nil {
		return nil, "", "", fmt.Errorf("exportar reporte %s: %w", format, err)
	}
	name := fmt.Sprintf("reporte_kolis_%s.%s", now.In(uc.loc).Format("20060102_150405"), r.Extension())
	return out, name, r.ContentType(), nil
}

func (uc *ReportUseCase) loaded(ctx context.Context) (*ledgerCache, error) {
	uc.mu.RLock()
	c := uc.cache
	uc.mu.RUnlock()
	if c != nil {
		return c, nil
	}
	if _, err := uc.Refresh(ctx); err != nil {
		return nil, err
	}
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.cache, nil
}

func (c *ledgerCache) view() ReportView {
	return ReportView{
		Loaded:     true,
		LedgerSize: len(c.entries),
		FetchedAt:  c.fetchedAt,
		Start:      c.start,
		End:        c.end,
		Entries:    c.filtered,
	}
}
