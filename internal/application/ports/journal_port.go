package ports

import (
	"context"
	"time"

	"github.com/jhoicas/koli-api/internal/domain/entity"
)

// Submission es una entrada de la bitácora de payloads enviados al servicio de inventario.
// Es una traza de auditoría: nunca se relee como estado de una koli.
type Submission struct {
	ID           string
	SessionID    string
	Workflow     string
	ContainerID  string
	Records      []entity.UpsertRecord
	ResponseCode int
	Message      string
	Transport    bool // true si el envío falló por transporte
	SubmittedAt  time.Time
}

// SubmissionJournal registra cada envío de guardado.
type SubmissionJournal interface {
	Record(ctx context.Context, s Submission) error
}

// ReportDocument es la vista filtrada del reporte lista para exportar.
type ReportDocument struct {
	Title       string
	Start, End  *time.Time
	GeneratedAt time.Time
	Entries     []entity.LedgerEntry
	Location    *time.Location
}

// ReportRenderer genera un archivo (PDF, XLSX) a partir del reporte.
type ReportRenderer interface {
	Render(ctx context.Context, doc ReportDocument) ([]byte, error)
	ContentType() string
	Extension() string
}
