package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/koli-api/internal/domain"
)

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, domain.SeveritySuccess, domain.SeverityOf(nil))
	assert.Equal(t, domain.SeverityWarning, domain.SeverityOf(domain.Errorf(domain.ErrValidation, "vacío")))
	assert.Equal(t, domain.SeverityError, domain.SeverityOf(domain.Errorf(domain.ErrServer, "rechazado")))
	assert.Equal(t, domain.SeverityError, domain.SeverityOf(errors.New("otro")))
}

func TestWarnf_ConservaTipoYBajaSeveridad(t *testing.T) {
	err := domain.Warnf(domain.ErrServer, "no se pudo cargar %s", "K-1")
	assert.True(t, errors.Is(err, domain.ErrServer))
	assert.Equal(t, domain.SeverityWarning, domain.SeverityOf(err))

	wrapped := fmt.Errorf("paso: %w", err)
	assert.Equal(t, domain.SeverityWarning, domain.SeverityOf(wrapped))
	assert.Equal(t, domain.Notice{Message: "no se pudo cargar K-1", Severity: domain.SeverityWarning}, domain.NoticeOf(err))
}
