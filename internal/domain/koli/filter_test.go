package koli_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/koli-api/internal/domain/entity"
	"github.com/jhoicas/koli-api/internal/domain/koli"
)

// istanbul es UTC+3 fijo, la zona de los depósitos.
var istanbul = time.FixedZone("TRT", 3*60*60)

func TestFilterLedger_RangoInclusivoPorDia(t *testing.T) {
	loc := istanbul
	ledger := []entity.LedgerEntry{
		{ContainerID: "K-1", CreationDate: time.Date(2024, 12, 31, 23, 59, 0, 0, loc)},
		{ContainerID: "K-2", CreationDate: time.Date(2025, 1, 1, 12, 0, 0, 0, loc)},
		{ContainerID: "K-3", CreationDate: time.Date(2025, 1, 2, 0, 1, 0, 0, loc)},
	}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, loc)
	end := time.Date(2025, 1, 1, 23, 59, 0, 0, loc)

	got := koli.FilterLedger(ledger, start, end, loc)
	require.Len(t, got, 1)
	assert.Equal(t, "K-2", got[0].ContainerID)
}

func TestFilterLedger_ExtremosIncluidos(t *testing.T) {
	loc := time.UTC
	ledger := []entity.LedgerEntry{
		{SKU: "first", CreationDate: time.Date(2025, 2, 1, 0, 0, 0, 0, loc)},
		{SKU: "last", CreationDate: time.Date(2025, 2, 3, 23, 59, 59, int(999*time.Millisecond), loc)},
		{SKU: "after", CreationDate: time.Date(2025, 2, 4, 0, 0, 0, 0, loc)},
	}
	// Las horas de los límites se ignoran: solo importa el día calendario.
	got := koli.FilterLedger(ledger,
		time.Date(2025, 2, 1, 17, 45, 0, 0, loc),
		time.Date(2025, 2, 3, 6, 0, 0, 0, loc), loc)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].SKU)
	assert.Equal(t, "last", got[1].SKU)
}

func TestFilterLedger_PuroYRepetible(t *testing.T) {
	loc := time.UTC
	ledger := []entity.LedgerEntry{
		{SKU: "a", CreationDate: time.Date(2025, 5, 1, 10, 0, 0, 0, loc)},
		{SKU: "b", CreationDate: time.Date(2025, 6, 1, 10, 0, 0, 0, loc)},
	}
	snapshot := append([]entity.LedgerEntry(nil), ledger...)
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, loc)
	end := time.Date(2025, 5, 31, 0, 0, 0, 0, loc)

	first := koli.FilterLedger(ledger, start, end, loc)
	second := koli.FilterLedger(ledger, start, end, loc)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, ledger, "el histórico no se modifica")
}

func TestDayBounds_ConvierteALaZonaLocal(t *testing.T) {
	loc := istanbul
	// 22:00 UTC del 31/12 ya es 01/01 en Estambul.
	from, to := koli.DayBounds(
		time.Date(2024, 12, 31, 22, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 22, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2025, 1, 1, 23, 59, 59, int(999*time.Millisecond), loc), to)
}

func TestFormatExportDate(t *testing.T) {
	ts := time.Date(2025, 3, 1, 21, 5, 0, 0, time.UTC)
	assert.Equal(t, "02-03-2025 00:05", koli.FormatExportDate(ts, istanbul))
	assert.Equal(t, "", koli.FormatExportDate(time.Time{}, istanbul))
}

func TestLedgerTotal(t *testing.T) {
	assert.Equal(t, 7, koli.LedgerTotal([]entity.LedgerEntry{{Quantity: 3}, {Quantity: 4}}))
	assert.Zero(t, koli.LedgerTotal(nil))
}
