package koli

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/koli-api/internal/domain"
	"github.com/jhoicas/koli-api/internal/domain/entity"
	domkoli "github.com/jhoicas/koli-api/internal/domain/koli"
)

// session es el estado de un ciclo de validación de koli para un operador.
// mu se mantiene durante todo un paso, incluida la llamada al servicio.
type session struct {
	mu         sync.Mutex
	id         string
	policy     domkoli.Policy
	validator  *domkoli.Validator
	manifest   *domkoli.Manifest
	baseline   domkoli.Baseline
	justAdded  bool
	operatorID *int64
	touchedAt  time.Time
}

func newSession(p domkoli.Policy, operatorID *int64, now time.Time) *session {
	return &session{
		id:         uuid.New().String(),
		policy:     p,
		validator:  domkoli.NewValidator(p),
		manifest:   domkoli.NewManifest(),
		baseline:   domkoli.NewBaseline(nil),
		operatorID: operatorID,
		touchedAt:  now,
	}
}

// resetContents vacía líneas, total y línea base. El número de koli se conserva.
func (s *session) resetContents() {
	s.manifest.Reset()
	s.baseline = domkoli.NewBaseline(nil)
	s.justAdded = false
}

// resetAll vuelve la sesión al estado inicial (tras guardar o limpiar).
func (s *session) resetAll() {
	s.resetContents()
	s.validator.Reset()
}

func (s *session) view() SessionView {
	return SessionView{
		ID:           s.id,
		Workflow:     string(s.policy.Workflow),
		ContainerID:  s.validator.ContainerID(),
		State:        s.validator.State().String(),
		Lines:        s.manifest.Items(),
		Total:        s.manifest.Total(),
		JustAdded:    s.justAdded,
		BaselineSize: s.baseline.Len(),
	}
}

// SessionView es la foto de una sesión devuelta a los llamadores.
type SessionView struct {
	ID           string
	Workflow     string
	ContainerID  string
	State        string
	Lines        []entity.LineItem
	Total        int
	JustAdded    bool
	BaselineSize int
}

// StepResult resultado de un paso del flujo: la sesión después del paso y la notificación.
type StepResult struct {
	Session SessionView
	Notice  domain.Notice
}

// sessionStore guarda las sesiones activas del servicio compartido.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (st *sessionStore) put(s *session) {
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
}

func (st *sessionStore) get(id string) (*session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, sessionNotFound(id)
	}
	return s, nil
}

// acquire devuelve la sesión con su mutex tomado. Si entre la búsqueda y el lock la
// sesión fue descartada, la suelta y responde como inexistente.
func (st *sessionStore) acquire(id string) (*session, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if !st.holds(s) {
		s.mu.Unlock()
		return nil, sessionNotFound(id)
	}
	return s, nil
}

// holds indica si s sigue siendo la sesión registrada con su id.
func (st *sessionStore) holds(s *session) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[s.id] == s
}

func sessionNotFound(id string) error {
	return domain.Errorf(domain.ErrNotFound, "sesión %q no encontrada", id)
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// evictIdle elimina las sesiones sin actividad desde antes de cutoff.
// Las sesiones ocupadas en un paso se saltan; un paso que esperaba el lock de una
// sesión descartada la encuentra fuera del mapa en acquire.
func (st *sessionStore) evictIdle(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := s.touchedAt.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}
