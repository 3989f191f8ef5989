package koli

import (
	"time"

	"github.com/jhoicas/koli-api/internal/domain/entity"
)

// DayBounds normaliza start al inicio de su día (00:00:00.000) y end al final
// del suyo (23:59:59.999), ambos en loc.
func DayBounds(start, end time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	s := start.In(loc)
	e := end.In(loc)
	from := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	to := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return from, to
}

// FilterLedger selecciona las entradas con creationDate en [start, end] (inclusivo en ambos
// extremos, por días calendario en loc). No modifica ledger.
func FilterLedger(ledger []entity.LedgerEntry, start, end time.Time, loc *time.Location) []entity.LedgerEntry {
	from, to := DayBounds(start, end, loc)
	out := make([]entity.LedgerEntry, 0)
	for _, e := range ledger {
		if e.CreationDate.Before(from) || e.CreationDate.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ExportDateLayout formato de fechas en los archivos exportados (dd-MM-yyyy HH:mm).
const ExportDateLayout = "02-01-2006 15:04"

// FormatExportDate formatea t en loc; una fecha ausente (cero) queda vacía.
func FormatExportDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(ExportDateLayout)
}

// LedgerTotal suma las cantidades de las entradas.
func LedgerTotal(entries []entity.LedgerEntry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}
