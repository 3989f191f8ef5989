package koli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/koli-api/internal/application/ports"
	"github.com/jhoicas/koli-api/internal/domain"
	"github.com/jhoicas/koli-api/internal/domain/entity"
	domkoli "github.com/jhoicas/koli-api/internal/domain/koli"
	"github.com/jhoicas/koli-api/pkg/logger"
)

// DefaultCallTimeout límite de cada llamada al servicio de inventario si no se configura otro.
const DefaultCallTimeout = 10 * time.Second

// SessionUseCase orquesta los flujos de alta (create) y agregado (append):
// validar koli → escanear → guardar → reiniciar.
type SessionUseCase struct {
	svc     ports.InventoryService
	journal ports.SubmissionJournal
	log     *logger.Logger
	store   *sessionStore
	locks   *keyedMutex
	timeout time.Duration
	now     func() time.Time
}

// SessionOption personaliza el caso de uso.
type SessionOption func(*SessionUseCase)

// WithJournal registra cada envío de guardado en la bitácora.
func WithJournal(j ports.SubmissionJournal) SessionOption {
	return func(uc *SessionUseCase) { uc.journal = j }
}

// WithCallTimeout fija el límite de cada llamada al servicio.
func WithCallTimeout(d time.Duration) SessionOption {
	return func(uc *SessionUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) SessionOption {
	return func(uc *SessionUseCase) { uc.now = now }
}

// NewSessionUseCase construye el caso de uso.
func NewSessionUseCase(svc ports.InventoryService, log *logger.Logger, opts ...SessionOption) *SessionUseCase {
	uc := &SessionUseCase{
		svc:     svc,
		log:     log.Component("sessions"),
		store:   newSessionStore(),
		locks:   newKeyedMutex(),
		timeout: DefaultCallTimeout,
		now:     time.Now,
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// Open crea una sesión para el flujo indicado. operatorID es el createdBy por defecto de las líneas nuevas.
func (uc *SessionUseCase) Open(workflow string, operatorID *int64) (*SessionView, error) {
	p, err := domkoli.PolicyFor(domkoli.Workflow(workflow))
	if err != nil {
		return nil, err
	}
	if p.Workflow == domkoli.WorkflowDelete {
		return nil, domain.Errorf(domain.ErrValidation, "el flujo de borrado no usa sesiones de escaneo")
	}
	s := newSession(p, operatorID, uc.now())
	uc.store.put(s)
	uc.log.Info().Str("session_id", s.id).Str("workflow", workflow).Msg("sesión abierta")
	v := s.view()
	return &v, nil
}

// Get devuelve la foto de una sesión.
func (uc *SessionUseCase) Get(id string) (*SessionView, error) {
	s, err := uc.store.acquire(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	v := s.view()
	return &v, nil
}

// ValidateContainer valida el número de koli según la política del flujo. En el flujo de
// agregado además carga la línea base y precarga el manifiesto con ella.
// Cualquier validación fallida vacía la sesión.
func (uc *SessionUseCase) ValidateContainer(ctx context.Context, id, containerID string) (*StepResult, error) {
	s, err := uc.store.acquire(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	s.touchedAt = uc.now()

	if strings.TrimSpace(containerID) == "" {
		return nil, domain.Errorf(domain.ErrValidation, "el número de koli no puede estar vacío")
	}
	s.resetContents()
	if err := s.validator.Begin(containerID); err != nil {
		return nil, err
	}
	cid := s.validator.ContainerID()
	log := uc.log.Container(s.id, cid)

	unlock := uc.locks.Lock(cid)
	defer unlock()

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	check, err := uc.svc.CheckContainer(callCtx, cid)
	if err != nil {
		s.validator.Abort()
		s.resetContents()
		log.Warn().Err(err).Msg("control de koli fallido")
		return nil, transportError("control de koli", err)
	}
	if err := s.validator.ResolveExistence(check.Exists, check.Message); err != nil {
		if s.policy.ResetOnReject {
			s.resetContents()
		}
		log.Info().Str("state", s.validator.State().String()).Msg("koli rechazada")
		return nil, err
	}

	notice := domain.Notice{Message: "Nueva koli aceptada. Escanee el barkod.", Severity: domain.SeveritySuccess}
	if s.policy.UsesBaseline {
		res, err := uc.svc.ListContainerContents(callCtx, cid)
		if err != nil {
			s.validator.Reject()
			s.resetContents()
			log.Warn().Err(err).Msg("carga de línea base fallida")
			return nil, transportError("contenido de koli", err)
		}
		if !res.OK() {
			s.validator.Reject()
			s.resetContents()
			log.Warn().Int("code", res.Code).Msg("carga de línea base rechazada")
			return nil, domain.Warnf(domain.ErrServer, "no se pudo cargar el contenido de la koli")
		}
		s.baseline = domkoli.NewBaseline(res.Lines)
		s.manifest.Prime(res.Lines)
		notice = domain.Notice{
			Message:  fmt.Sprintf("Koli cargada: %d líneas, %d unidades.", s.manifest.Len(), s.manifest.Total()),
			Severity: domain.SeveritySuccess,
		}
	}
	log.Info().Int("lines", s.manifest.Len()).Msg("koli validada")
	return &StepResult{Session: s.view(), Notice: notice}, nil
}

// Scan busca el producto por barkod y lo fusiona en el manifiesto.
// Un fallo no deshace las fusiones anteriores.
func (uc *SessionUseCase) Scan(ctx context.Context, id, barcode string) (*StepResult, error) {
	s, err := uc.store.acquire(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	s.touchedAt = uc.now()

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		if s.policy.TolerateEmptyScan && s.justAdded && s.manifest.Len() > 0 {
			return &StepResult{Session: s.view(), Notice: domain.Notice{Severity: domain.SeverityInfo}}, nil
		}
		return nil, domain.Errorf(domain.ErrValidation, "el barkod no puede estar vacío")
	}
	if !s.validator.Validated() {
		return nil, domain.Errorf(domain.ErrValidation, "valide primero el número de koli")
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	lookup, err := uc.svc.FindProductByBarcode(callCtx, barcode)
	if err != nil {
		uc.log.Warn().Err(err).Str("session_id", s.id).Str("barcode", barcode).Msg("búsqueda de producto fallida")
		return nil, transportError("búsqueda de producto", err)
	}
	if lookup.Product == nil || lookup.Product.SKU == "" {
		msg := lookup.Message
		if msg == "" {
			msg = "producto no encontrado"
		}
		return nil, domain.Errorf(domain.ErrNotFound, "%s", msg)
	}
	delta, err := domkoli.ParseDelta(lookup.Product.Quantity)
	if err != nil {
		return nil, err
	}

	line := s.manifest.Merge(lookup.Product.SKU, delta, lookup.Product.ItemID, s.operatorID, uc.now())
	s.justAdded = true
	uc.log.Debug().
		Str("session_id", s.id).
		Str("sku", line.SKU).
		Int("delta", delta).
		Int("total", s.manifest.Total()).
		Msg("lectura fusionada")

	return &StepResult{
		Session: s.view(),
		Notice:  domain.Notice{Message: fmt.Sprintf("%s +%d", line.SKU, delta), Severity: domain.SeveritySuccess},
	}, nil
}

// Save envía el contenido al servicio de inventario y, si es aceptado, reinicia la sesión.
// En el flujo de agregado el payload se reconcilia contra la línea base; en el de alta
// todas las filas van como nuevas.
func (uc *SessionUseCase) Save(ctx context.Context, id string) (*StepResult, error) {
	s, err := uc.store.acquire(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	s.touchedAt = uc.now()

	if !s.validator.Validated() {
		return nil, domain.Errorf(domain.ErrValidation, "valide primero el número de koli")
	}
	if s.manifest.Len() == 0 {
		return nil, domain.Errorf(domain.ErrValidation, "agregue productos primero")
	}
	cid := s.validator.ContainerID()

	var (
		records []entity.UpsertRecord
		submit  func(context.Context, []entity.UpsertRecord) (*ports.MutationResult, error)
	)
	if s.policy.UsesBaseline {
		records = domkoli.Reconcile(cid, s.manifest.Items(), s.baseline)
		submit = uc.svc.UpsertContainerContents
	} else {
		records = domkoli.FreshRecords(cid, s.manifest.Items())
		submit = uc.svc.RegisterContainerContents
	}

	unlock := uc.locks.Lock(cid)
	defer unlock()

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res, err := submit(callCtx, records)
	uc.record(ctx, s, cid, records, res, err)
	if err != nil {
		uc.log.Warn().Err(err).Str("session_id", s.id).Str("container_id", cid).Msg("guardado fallido")
		return nil, transportError("guardado", err)
	}
	if !res.OK() {
		msg := res.Message
		if msg == "" {
			msg = "error al guardar"
		}
		return nil, domain.Errorf(domain.ErrServer, "%s", msg)
	}

	uc.log.Info().
		Str("session_id", s.id).
		Str("container_id", cid).
		Int("records", len(records)).
		Int("total", s.manifest.Total()).
		Msg("koli guardada")
	s.resetAll()

	msg := res.Message
	if msg == "" {
		msg = "Guardado."
	}
	return &StepResult{Session: s.view(), Notice: domain.Notice{Message: msg, Severity: domain.SeveritySuccess}}, nil
}

// Clear vacía la sesión y olvida el número de koli.
func (uc *SessionUseCase) Clear(id string) (*StepResult, error) {
	s, err := uc.store.acquire(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	s.touchedAt = uc.now()
	s.resetAll()
	return &StepResult{Session: s.view(), Notice: domain.Notice{Message: "Sesión limpiada.", Severity: domain.SeverityInfo}}, nil
}

// Close descarta la sesión.
func (uc *SessionUseCase) Close(id string) error {
	if !uc.store.remove(id) {
		return sessionNotFound(id)
	}
	return nil
}

// EvictIdle descarta las sesiones sin actividad durante más de ttl.
func (uc *SessionUseCase) EvictIdle(ttl time.Duration) int {
	n := uc.store.evictIdle(uc.now().Add(-ttl))
	if n > 0 {
		uc.log.Info().Int("evicted", n).Int("active", uc.store.len()).Msg("sesiones inactivas descartadas")
	}
	return n
}

func (uc *SessionUseCase) record(ctx context.Context, s *session, cid string, records []entity.UpsertRecord, res *ports.MutationResult, callErr error) {
	if uc.journal == nil {
		return
	}
	sub := ports.Submission{
		SessionID:   s.id,
		Workflow:    string(s.policy.Workflow),
		ContainerID: cid,
		Records:     records,
		Transport:   callErr != nil,
		SubmittedAt: uc.now(),
	}
	if res != nil {
		sub.ResponseCode = res.Code
		sub.Message = res.Message
	}
	if callErr != nil {
		sub.Message = callErr.Error()
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
	defer cancel()
	if err := uc.journal.Record(jctx, sub); err != nil {
		uc.log.Error().Err(err).Str("session_id", s.id).Msg("bitácora de envíos")
	}
}

// transportError normaliza un fallo de transporte o timeout.
func transportError(op string, err error) error {
	return domain.Errorf(domain.ErrTransport, "%s: servicio de inventario no disponible (%v)", op, err)
}
