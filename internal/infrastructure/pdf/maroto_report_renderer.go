// Package pdf genera el reporte de kolis en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                  │  Rango + Fecha generación │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Koli No | Adet | Model | Barkod | Tarih             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: registros / unidades                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/koli-api/internal/application/ports"
	"github.com/jhoicas/koli-api/internal/domain/entity"
	domkoli "github.com/jhoicas/koli-api/internal/domain/koli"
)

var _ ports.ReportRenderer = (*MarotoReportRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorStripe  = &props.Color{Red: 238, Green: 242, Blue: 247}
)

// MarotoReportRenderer implementa ports.ReportRenderer usando Maroto v2.
type MarotoReportRenderer struct{}

// NewMarotoReportRenderer construye el generador.
func NewMarotoReportRenderer() *MarotoReportRenderer { return &MarotoReportRenderer{} }

// ContentType del archivo generado.
func (g *MarotoReportRenderer) ContentType() string { return "application/pdf" }

// Extension del archivo generado.
func (g *MarotoReportRenderer) Extension() string { return "pdf" }

// Render genera el PDF del reporte y devuelve sus bytes.
func (g *MarotoReportRenderer) Render(ctx context.Context, doc ports.ReportDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(doc)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc.Entries))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y rango + fecha de generación (der).
func headerRow(doc ports.ReportDocument) core.Row {
	rango := "Todas las fechas"
	if doc.Start != nil && doc.End != nil {
		rango = fmt.Sprintf("%s → %s",
			doc.Start.In(loc(doc)).Format("02-01-2006"),
			doc.End.In(loc(doc)).Format("02-01-2006"))
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New(doc.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(rango, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Generado: "+domkoli.FormatExportDate(doc.GeneratedAt, loc(doc)), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Koli No", 3, align.Left),
		h("Adet", 1, align.Right),
		h("Model", 3, align.Left),
		h("Barkod", 3, align.Left),
		h("Tarih", 2, align.Right),
	)
}

// tableRows: una fila por entrada, con fondo alterno.
func tableRows(doc ports.ReportDocument) []core.Row {
	result := make([]core.Row, 0, len(doc.Entries))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for i, e := range doc.Entries {
		r := row.New(6).Add(
			cell(e.ContainerID, 3, align.Left),
			cell(strconv.Itoa(e.Quantity), 1, align.Right),
			cell(e.SKU, 3, align.Left),
			cell(e.Barcode, 3, align.Left),
			cell(domkoli.FormatExportDate(e.CreationDate, loc(doc)), 2, align.Right),
		)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, r)
	}
	return result
}

// totalsRow: cantidad de registros y suma de unidades.
func totalsRow(entries []entity.LedgerEntry) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(6).Add(text.New(
			fmt.Sprintf("%d registros · %d unidades", len(entries), domkoli.LedgerTotal(entries)),
			props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1},
		)),
	)
}

func loc(doc ports.ReportDocument) *time.Location {
	if doc.Location == nil {
		return time.Local
	}
	return doc.Location
}
