// Package csvexport escribe los relatórios en CSV separado por punto y coma y
// codificado en Windows-1252, el formato que abren sin asistente las planillas
// configuradas en pt-BR.
package csvexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/sg-panel/internal/application/report"
)

// Generator implementa report.Generator.
type Generator struct{}

// New construye el generador.
func New() *Generator { return &Generator{} }

// Generate serializa el documento. Los caracteres que Windows-1252 no puede
// representar se reemplazan por el byte SUB (0x1A) en lugar de abortar la exportación.
func (g *Generator) Generate(_ context.Context, doc report.Document) ([]byte, error) {
	var buf bytes.Buffer
	tw := transform.NewWriter(&buf, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))

	w := csv.NewWriter(tw)
	w.Comma = ';'
	w.UseCRLF = true
	if err := w.Write(doc.Columns); err != nil {
		return nil, fmt.Errorf("csv: cabecera: %w", err)
	}
	for i, r := range doc.Rows {
		if err := w.Write(r); err != nil {
			return nil, fmt.Errorf("csv: fila %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: escribir: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("csv: codificar windows-1252: %w", err)
	}
	return buf.Bytes(), nil
}
