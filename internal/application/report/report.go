// Package report genera las exportaciones de la página de Relatórios a partir
// de las mismas tablas que pinta el panel.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/domain"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// Format formato de exportación.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatCSV Format = "csv"
)

// ParseFormat valida el formato recibido por URL o flag.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatPDF, FormatCSV:
		return Format(s), true
	default:
		return "", false
	}
}

// ContentType del formato.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=windows-1252"
}

// Document tabla lista para serializar.
type Document struct {
	Title       string
	Author      string
	GeneratedAt time.Time
	Columns     []string
	Rows        [][]string
}

// Generator serializa un Document (PDF o CSV).
type Generator interface {
	Generate(ctx context.Context, doc Document) ([]byte, error)
}

// Source lo que el servicio necesita del controlador de vista.
type Source interface {
	LoadCollection(ctx context.Context, kind entity.Kind) error
	Render(kind entity.Kind) (view.Table, error)
	Snapshot() view.Snapshot
}

// Export resultado listo para descargar.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service orquesta recarga + render + serialización.
type Service struct {
	generators map[Format]Generator
	now        func() time.Time
}

// NewService construye el servicio con un generador por formato.
func NewService(pdf, csv Generator) *Service {
	return &Service{
		generators: map[Format]Generator{FormatPDF: pdf, FormatCSV: csv},
		now:        time.Now,
	}
}

var titles = map[entity.Kind]string{
	entity.KindProducts: "Relatório de Produtos",
	entity.KindClients:  "Relatório de Clientes",
}

var filenames = map[entity.Kind]string{
	entity.KindProducts: "produtos",
	entity.KindClients:  "clientes",
}

// Exportable indica si el tipo tiene relatório.
func Exportable(kind entity.Kind) bool {
	_, ok := titles[kind]
	return ok
}

// Export recarga la colección (la página de relatórios no carga nada al entrar)
// y la serializa. Si la recarga falla no se exporta una copia vieja.
func (s *Service) Export(ctx context.Context, src Source, kind entity.Kind, format Format) (*Export, error) {
	if !Exportable(kind) {
		return nil, fmt.Errorf("report: %w: %q", domain.ErrUnknownKind, kind)
	}
	gen, ok := s.generators[format]
	if !ok || gen == nil {
		return nil, fmt.Errorf("report: %w: formato %q", domain.ErrInvalidInput, format)
	}
	if err := src.LoadCollection(ctx, kind); err != nil {
		return nil, fmt.Errorf("report: recargar %s: %w", kind, err)
	}
	table, err := src.Render(kind)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := Document{
		Title:       titles[kind],
		Author:      src.Snapshot().UserLabel(),
		GeneratedAt: now,
		Columns:     table.Columns,
		Rows:        make([][]string, 0, len(table.Rows)),
	}
	for _, r := range table.Rows {
		doc.Rows = append(doc.Rows, r.Cells)
	}

	data, err := gen.Generate(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("report: generar %s: %w", format, err)
	}
	return &Export{
		Filename:    fmt.Sprintf("%s-%s.%s", filenames[kind], now.Format("20060102"), format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
