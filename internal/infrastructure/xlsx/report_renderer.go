// Package xlsx genera el reporte de kolis como planilla Excel.
package xlsx

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/koli-api/internal/application/ports"
	domkoli "github.com/jhoicas/koli-api/internal/domain/koli"
)

var _ ports.ReportRenderer = (*ReportRenderer)(nil)

// SheetName hoja con las filas del reporte.
const SheetName = "Kolis"

var header = []any{"Koli No", "Adet", "Model", "Barkod", "Tarih"}

// ReportRenderer implementa ports.ReportRenderer con excelize.
type ReportRenderer struct{}

// NewReportRenderer construye el generador.
func NewReportRenderer() *ReportRenderer { return &ReportRenderer{} }

// ContentType del archivo generado.
func (r *ReportRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension del archivo generado.
func (r *ReportRenderer) Extension() string { return "xlsx" }

// Render escribe una fila de cabecera, una fila por entrada y una fila de total.
func (r *ReportRenderer) Render(ctx context.Context, doc ports.ReportDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc := doc.Location
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", bold); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}

	for i, e := range doc.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{e.ContainerID, e.Quantity, e.SKU, e.Barcode, domkoli.FormatExportDate(e.CreationDate, loc)}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+1, err)
		}
	}

	totalRow := len(doc.Entries) + 2
	totalCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	total := []any{"Toplam", domkoli.LedgerTotal(doc.Entries)}
	if err := f.SetSheetRow(SheetName, totalCell, &total); err != nil {
		return nil, fmt.Errorf("xlsx: total: %w", err)
	}
	endCell, _ := excelize.CoordinatesToCellName(2, totalRow)
	if err := f.SetCellStyle(SheetName, totalCell, endCell, bold); err != nil {
		return nil, fmt.Errorf("xlsx: total: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "E", 20); err != nil {
		return nil, fmt.Errorf("xlsx: ancho de columnas: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
