package koli

import (
	"fmt"
	"strings"

	"github.com/jhoicas/koli-api/internal/domain"
)

// Workflow identifica uno de los flujos de trabajo sobre kolis.
type Workflow string

const (
	WorkflowCreate Workflow = "create" // nueva koli + escaneo
	WorkflowAppend Workflow = "append" // agregar a una koli existente
	WorkflowDelete Workflow = "delete" // borrar líneas de una koli
)

// State es el estado de validación del número de koli.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateValidated
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateValidated:
		return "validated"
	case StateRejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Policy parametriza la sesión según el flujo.
type Policy struct {
	Workflow Workflow
	// RequireExisting: la koli es válida solo si el servicio reporta que ya existe.
	RequireExisting bool
	// UsesBaseline: al validar se carga el contenido actual y se reconcilia al guardar.
	UsesBaseline bool
	// ResetOnReject: un rechazo o fallo de validación vacía la sesión.
	ResetOnReject bool
	// TolerateEmptyScan: un barkod vacío tras un agregado exitoso no es error.
	TolerateEmptyScan bool
}

// PolicyFor devuelve la política de un flujo.
func PolicyFor(w Workflow) (Policy, error) {
	switch w {
	case WorkflowCreate:
		return Policy{Workflow: w, ResetOnReject: true}, nil
	case WorkflowAppend:
		return Policy{
			Workflow:          w,
			RequireExisting:   true,
			UsesBaseline:      true,
			ResetOnReject:     true,
			TolerateEmptyScan: true,
		}, nil
	case WorkflowDelete:
		return Policy{Workflow: w, RequireExisting: true}, nil
	}
	return Policy{}, domain.Errorf(domain.ErrValidation, "flujo desconocido: %q", w)
}

// Validator es la máquina de estados Idle → Validating → {Validated, Rejected}.
type Validator struct {
	policy      Policy
	state       State
	containerID string
}

// NewValidator construye el validador para una política.
func NewValidator(p Policy) *Validator {
	return &Validator{policy: p}
}

// State devuelve el estado actual.
func (v *Validator) State() State { return v.state }

// ContainerID devuelve el número de koli en validación o validado.
func (v *Validator) ContainerID() string { return v.containerID }

// Validated indica si se puede empezar a escanear.
func (v *Validator) Validated() bool { return v.state == StateValidated }

// Begin inicia la validación. Un número vacío no sale a red ni cambia el estado.
func (v *Validator) Begin(containerID string) error {
	id := strings.TrimSpace(containerID)
	if id == "" {
		return domain.Errorf(domain.ErrValidation, "el número de koli no puede estar vacío")
	}
	v.state = StateValidating
	v.containerID = id
	return nil
}

// ResolveExistence aplica la polaridad de la política a la respuesta de CheckContainer.
func (v *Validator) ResolveExistence(exists bool, message string) error {
	if v.state != StateValidating {
		return domain.Errorf(domain.ErrValidation, "no hay validación en curso")
	}
	if exists == v.policy.RequireExisting {
		v.state = StateValidated
		return nil
	}
	v.state = StateRejected
	if message == "" {
		if v.policy.RequireExisting {
			message = "koli no encontrada"
		} else {
			message = "este número de koli ya está registrado"
		}
	}
	return domain.Errorf(domain.ErrConflict, "%s", message)
}

// ResolveListing valida por contenido (flujo de borrado): válida si la lista tiene al menos una línea.
func (v *Validator) ResolveListing(count int) error {
	if v.state != StateValidating {
		return domain.Errorf(domain.ErrValidation, "no hay validación en curso")
	}
	if count > 0 {
		v.state = StateValidated
		return nil
	}
	v.state = StateRejected
	return domain.Errorf(domain.ErrNotFound, "koli no encontrada")
}

// Reject marca la validación como rechazada (p. ej. falla la carga de la línea base).
func (v *Validator) Reject() {
	v.state = StateRejected
}

// Abort vuelve a Idle tras un fallo de transporte durante la validación.
func (v *Validator) Abort() {
	v.state = StateIdle
}

// Reset olvida el número de koli.
func (v *Validator) Reset() {
	v.state = StateIdle
	v.containerID = ""
}
