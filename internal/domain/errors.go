package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrValidation   = errors.New("entrada inválida")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrTransport    = errors.New("fallo de comunicación con el servicio de inventario")
	ErrServer       = errors.New("el servicio de inventario rechazó la operación")
	ErrUnauthorized = errors.New("no autorizado")
)

// Severidades con las que se notifica un resultado al operador.
const (
	SeveritySuccess = "success"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notice es la notificación única y legible que acompaña a cada paso de un flujo.
type Notice struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// opError asocia un mensaje para el operador a uno de los errores de dominio.
// severity, si no está vacío, reemplaza la severidad que correspondería al tipo.
type opError struct {
	kind     error
	msg      string
	severity string
}

func (e *opError) Error() string { return e.msg }
func (e *opError) Unwrap() error { return e.kind }

// Errorf construye un error de tipo kind cuyo texto es el mensaje para el operador.
func Errorf(kind error, format string, args ...any) error {
	return &opError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Warnf como Errorf, pero el operador lo recibe como advertencia sea cual sea el tipo.
func Warnf(kind error, format string, args ...any) error {
	return &opError{kind: kind, msg: fmt.Sprintf(format, args...), severity: SeverityWarning}
}

// MessageOf devuelve el texto a mostrar para err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var op *opError
	if errors.As(err, &op) {
		return op.msg
	}
	return err.Error()
}

// SeverityOf clasifica err: las validaciones locales son advertencias, el resto errores,
// salvo que el error lleve su propia severidad.
func SeverityOf(err error) string {
	var op *opError
	if errors.As(err, &op) && op.severity != "" {
		return op.severity
	}
	switch {
	case err == nil:
		return SeveritySuccess
	case errors.Is(err, ErrValidation):
		return SeverityWarning
	default:
		return SeverityError
	}
}

// NoticeOf convierte err en la notificación que recibe el operador.
func NoticeOf(err error) Notice {
	return Notice{Message: MessageOf(err), Severity: SeverityOf(err)}
}
