package koli

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/koli-api/internal/application/ports"
	"github.com/jhoicas/koli-api/internal/domain"
	"github.com/jhoicas/koli-api/internal/domain/entity"
	domkoli "github.com/jhoicas/koli-api/internal/domain/koli"
	"github.com/jhoicas/koli-api/pkg/logger"
)

// DeletionView contenido en caché de una koli en el flujo de borrado.
type DeletionView struct {
	ContainerID string
	Lines       []entity.LineItem
	Total       int
}

// DeletionResult resultado de un borrado: la caché refrescada y la notificación.
type DeletionResult struct {
	View   DeletionView
	Notice domain.Notice
}

// DeletionUseCase implementa el protocolo listar → confirmar → borrar → re-listar.
// La caché por koli solo se reemplaza con lo que devuelve el servicio; nunca se resta localmente.
type DeletionUseCase struct {
	svc     ports.InventoryService
	log     *logger.Logger
	locks   *keyedMutex
	timeout time.Duration
	policy  domkoli.Policy
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]*cachedContents
}

// cachedContents último listado de una koli y el momento en que se consultó por última vez.
type cachedContents struct {
	lines     []entity.LineItem
	touchedAt time.Time
}

// DeletionOption personaliza el caso de uso.
type DeletionOption func(*DeletionUseCase)

// WithDeletionClock reemplaza el reloj (tests).
func WithDeletionClock(now func() time.Time) DeletionOption {
	return func(uc *DeletionUseCase) { uc.now = now }
}

// NewDeletionUseCase construye el caso de uso.
func NewDeletionUseCase(svc ports.InventoryService, log *logger.Logger, timeout time.Duration, opts ...DeletionOption) *DeletionUseCase {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	p, _ := domkoli.PolicyFor(domkoli.WorkflowDelete)
	uc := &DeletionUseCase{
		svc:     svc,
		log:     log.Component("deletions"),
		locks:   newKeyedMutex(),
		timeout: timeout,
		policy:  p,
		now:     time.Now,
		cache:   make(map[string]*cachedContents),
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// List valida la koli por contenido y carga su caché local.
// Cualquier fallo (código de error, lista vacía, transporte) limpia la caché.
func (uc *DeletionUseCase) List(ctx context.Context, containerID string) (*DeletionView, error) {
	cid := strings.TrimSpace(containerID)
	if cid == "" {
		return nil, domain.Errorf(domain.ErrValidation, "el número de koli no puede estar vacío")
	}
	unlock := uc.locks.Lock(cid)
	defer unlock()

	if err := uc.refresh(ctx, cid); err != nil {
		return nil, err
	}
	v := uc.view(cid)
	return &v, nil
}

// Delete borra la línea con el barkod indicado. Si el barkod no está en la caché no se
// llama al servicio. Tras un borrado exitoso la caché se recarga desde el servicio.
func (uc *DeletionUseCase) Delete(ctx context.Context, containerID, barcode string) (*DeletionResult, error) {
	cid := strings.TrimSpace(containerID)
	barcode = strings.TrimSpace(barcode)
	if cid == "" {
		return nil, domain.Errorf(domain.ErrValidation, "el número de koli no puede estar vacío")
	}
	if barcode == "" {
		return nil, domain.Errorf(domain.ErrValidation, "el barkod no puede estar vacío")
	}
	unlock := uc.locks.Lock(cid)
	defer unlock()

	if !uc.cached(cid, barcode) {
		return nil, domain.Errorf(domain.ErrNotFound, "el producto no se encuentra en esta koli")
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	res, err := uc.svc.DeleteContainerItem(callCtx, cid, barcode)
	cancel()
	if err != nil {
		uc.log.Warn().Err(err).Str("container_id", cid).Str("barcode", barcode).Msg("borrado fallido")
		return nil, transportError("borrado", err)
	}
	if !res.OK() {
		msg := res.Message
		if msg == "" {
			msg = "no se pudo borrar el producto"
		}
		return nil, domain.Errorf(domain.ErrServer, "%s", msg)
	}
	uc.log.Info().Str("container_id", cid).Str("barcode", barcode).Msg("línea borrada")

	msg := res.Message
	if msg == "" {
		msg = "Producto borrado."
	}
	out := &DeletionResult{Notice: domain.Notice{Message: msg, Severity: domain.SeveritySuccess}}
	if err := uc.refresh(ctx, cid); err != nil {
		// El borrado ya ocurrió; la caché quedó limpia por el fallo del re-listado.
		uc.log.Info().Err(err).Str("container_id", cid).Msg("re-listado tras borrado sin contenido")
	}
	out.View = uc.view(cid)
	return out, nil
}

// Snapshot devuelve la caché actual de una koli.
func (uc *DeletionUseCase) Snapshot(containerID string) DeletionView {
	return uc.view(strings.TrimSpace(containerID))
}

// Forget descarta la caché de una koli (botón limpiar).
func (uc *DeletionUseCase) Forget(containerID string) {
	uc.forget(strings.TrimSpace(containerID))
}

// EvictIdle descarta los listados no consultados durante más de ttl.
func (uc *DeletionUseCase) EvictIdle(ttl time.Duration) int {
	cutoff := uc.now().Add(-ttl)
	uc.mu.Lock()
	n := 0
	for cid, c := range uc.cache {
		if c.touchedAt.Before(cutoff) {
			delete(uc.cache, cid)
			n++
		}
	}
	left := len(uc.cache)
	uc.mu.Unlock()
	if n > 0 {
		uc.log.Info().Int("evicted", n).Int("cached", left).Msg("listados inactivos descartados")
	}
	return n
}

// refresh consulta el contenido y reemplaza la caché, o la limpia si la validación falla.
// Debe llamarse con el lock de la koli tomado.
func (uc *DeletionUseCase) refresh(ctx context.Context, cid string) error {
	v := domkoli.NewValidator(uc.policy)
	if err := v.Begin(cid); err != nil {
		return err
	}
	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res, err := uc.svc.ListContainerContents(callCtx, cid)
	if err != nil {
		uc.forget(cid)
		return transportError("contenido de koli", err)
	}
	count := len(res.Lines)
	if !res.OK() {
		count = 0
	}
	if err := v.ResolveListing(count); err != nil {
		uc.forget(cid)
		return err
	}
	lines := make([]entity.LineItem, len(res.Lines))
	copy(lines, res.Lines)
	uc.mu.Lock()
	uc.cache[cid] = &cachedContents{lines: lines, touchedAt: uc.now()}
	uc.mu.Unlock()
	return nil
}

func (uc *DeletionUseCase) forget(cid string) {
	uc.mu.Lock()
	delete(uc.cache, cid)
	uc.mu.Unlock()
}

func (uc *DeletionUseCase) cached(cid, barcode string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	c, ok := uc.cache[cid]
	if !ok {
		return false
	}
	c.touchedAt = uc.now()
	for _, l := range c.lines {
		if l.Barcode == barcode {
			return true
		}
	}
	return false
}

func (uc *DeletionUseCase) view(cid string) DeletionView {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	var lines []entity.LineItem
	if c, ok := uc.cache[cid]; ok {
		lines = c.lines
	}
	v := DeletionView{ContainerID: cid, Lines: make([]entity.LineItem, len(lines))}
	copy(v.Lines, lines)
	for _, l := range lines {
		v.Total += l.Quantity
	}
	return v
}
