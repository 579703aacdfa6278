// Package pdf genera los relatórios del panel en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: S&G + título          │  Fecha de generación        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: las mismas columnas que muestra el panel             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de registros + usuario que exportó            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/sg-panel/internal/application/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// gridSize columnas de la grilla de Maroto.
const gridSize = 12

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa report.Generator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Generate genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) Generate(_ context.Context, doc report.Document) ([]byte, error) {
	if len(doc.Columns) == 0 || len(doc.Columns) > gridSize {
		return nil, fmt.Errorf("pdf: número de columnas inválido: %d", len(doc.Columns))
	}
	author := nonEmpty(doc.Author, "S&G")
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Title, true).
		WithAuthor(author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	widths := columnWidths(len(doc.Columns))
	m.AddRows(tableHeaderRow(doc.Columns, widths))
	if len(doc.Rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(gridSize).Add(
			text.New("Nenhum registro.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	m.AddRows(tableDetailRows(doc.Rows, widths)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRow(len(doc.Rows), author))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: marca + título (izq) y fecha de generación (der).
func headerRow(doc report.Document) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("S&G", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.Title, props.Text{
				Size: 10, Top: 8, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Gerado em", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

// tableHeaderRow: cabecera con fondo de color primario.
func tableHeaderRow(columns []string, widths []int) core.Row {
	cols := make([]core.Col, 0, len(columns))
	for i, label := range columns {
		cols = append(cols, col.New(widths[i]).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por registro, con filas alternas sombreadas.
func tableDetailRows(rows [][]string, widths []int) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for i, cells := range rows {
		cols := make([]core.Col, 0, len(widths))
		for j, w := range widths {
			value := ""
			if j < len(cells) {
				value = cells[j]
			}
			cols = append(cols, col.New(w).Add(text.New(value, props.Text{
				Size: 8, Top: 1, Left: 1, Right: 1,
			})))
		}
		r := row.New(7).Add(cols...)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, r)
	}
	return result
}

// footerRow: total de registros y autor.
func footerRow(total int, author string) core.Row {
	return row.New(10).Add(
		col.New(6).Add(text.New(fmt.Sprintf("Total de registros: %d", total), props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 2, Color: colorPrimary,
		})),
		col.New(6).Add(text.New("Exportado por "+author, props.Text{
			Size: 7, Align: align.Right, Top: 2, Color: colorGray,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// columnWidths reparte la grilla de 12 entre n columnas; el resto va a la primera
// (nombre), que es la que más texto lleva.
// Ej: 4 → [3 3 3 3], 3 → [4 4 4], 5 → [4 2 2 2 2].
func columnWidths(n int) []int {
	widths := make([]int, n)
	for i := range widths {
		widths[i] = gridSize / n
	}
	widths[0] += gridSize % n
	return widths
}
