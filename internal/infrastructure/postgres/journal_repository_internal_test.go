package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/koli-api/internal/application/ports"
	"github.com/jhoicas/koli-api/internal/domain/entity"
)

func TestLineBatch_UnaFilaPorRegistro(t *testing.T) {
	created := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	s := ports.Submission{
		ID: "sub-1",
		Records: []entity.UpsertRecord{
			{SKU: "A", RecordID: entity.Int64Ptr(41), Quantity: 8, CreationDate: created},
			{SKU: "B", Quantity: 3, CreationDate: created},
		},
	}

	b := lineBatch(s)
	require.Equal(t, 2, b.Len())
	first := b.QueuedQueries[0].Arguments
	assert.Equal(t, "sub-1", first[0])
	assert.Equal(t, 0, first[1])
	assert.Equal(t, int64(41), first[3])
	second := b.QueuedQueries[1].Arguments
	assert.Nil(t, second[3], "sin identidad se guarda como NULL")
	assert.Equal(t, 3, second[6])
}

func TestLineBatch_SinRegistros(t *testing.T) {
	assert.Zero(t, lineBatch(ports.Submission{ID: "x"}).Len())
}

func TestNullableID(t *testing.T) {
	assert.Nil(t, nullableID(nil))
	assert.Equal(t, int64(7), nullableID(entity.Int64Ptr(7)))
}
