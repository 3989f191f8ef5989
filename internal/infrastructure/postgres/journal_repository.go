package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/koli-api/internal/application/ports"
)

var _ ports.SubmissionJournal = (*JournalRepo)(nil)

const journalSchema = `
CREATE TABLE IF NOT EXISTS koli_submissions (
	id            UUID PRIMARY KEY,
	session_id    TEXT        NOT NULL,
	workflow      TEXT        NOT NULL,
	container_id  TEXT        NOT NULL,
	response_code INTEGER     NOT NULL,
	message       TEXT        NOT NULL DEFAULT '',
	transport     BOOLEAN     NOT NULL DEFAULT FALSE,
	submitted_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_koli_submissions_container ON koli_submissions (container_id, submitted_at DESC);
CREATE TABLE IF NOT EXISTS koli_submission_lines (
	submission_id UUID        NOT NULL REFERENCES koli_submissions (id) ON DELETE CASCADE,
	position      INTEGER     NOT NULL,
	sku           TEXT        NOT NULL,
	record_id     BIGINT,
	item_id       BIGINT,
	created_by    BIGINT,
	quantity      INTEGER     NOT NULL,
	creation_date TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (submission_id, position)
);`

const insertSubmission = `
	INSERT INTO koli_submissions (id, session_id, workflow, container_id, response_code, message, transport, submitted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const insertSubmissionLine = `
	INSERT INTO koli_submission_lines (submission_id, position, sku, record_id, item_id, created_by, quantity, creation_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// JournalRepo bitácora de envíos sobre PostgreSQL. Solo escribe: el estado de las kolis
// vive en el servicio de inventario.
type JournalRepo struct {
	tx *TxRunner
	q  Querier
}

// NewJournalRepository construye la bitácora.
func NewJournalRepository(q Querier, tx *TxRunner) *JournalRepo {
	return &JournalRepo{q: q, tx: tx}
}

// EnsureSchema crea las tablas si no existen.
func (r *JournalRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, journalSchema); err != nil {
		return fmt.Errorf("crear esquema de bitácora: %w", err)
	}
	return nil
}

// Record inserta el envío y sus filas en una sola transacción.
func (r *JournalRepo) Record(ctx context.Context, s ports.Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return r.tx.Run(ctx, func(q Querier) error {
		_, err := q.Exec(ctx, insertSubmission,
			s.ID, s.SessionID, s.Workflow, s.ContainerID, s.ResponseCode, s.Message, s.Transport, s.SubmittedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("envío %s ya registrado: %w", s.ID, err)
			}
			return fmt.Errorf("insert submission: %w", err)
		}
		batch := lineBatch(s)
		if batch.Len() == 0 {
			return nil
		}
		br := q.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert submission line %d: %w", i, err)
			}
		}
		return br.Close()
	})
}

// lineBatch arma un insert por fila del payload, en el orden enviado.
func lineBatch(s ports.Submission) *pgx.Batch {
	b := &pgx.Batch{}
	for i, rec := range s.Records {
		b.Queue(insertSubmissionLine,
			s.ID, i, rec.SKU, nullableID(rec.RecordID), nullableID(rec.ItemID), nullableID(rec.CreatedBy),
			rec.Quantity, rec.CreationDate,
		)
	}
	return b
}
