package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jhoicas/sg-panel/internal/application/view"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
)

// renderTable pinta una tabla de la vista con columnas alineadas. La primera
// columna es el id del registro, que sgctl necesita para save y delete.
func renderTable(title string, t view.Table) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	if len(t.Rows) == 0 {
		sb.WriteString(mutedStyle.Render(t.Empty))
		sb.WriteString("\n")
		return sb.String()
	}

	headers := append([]string{"ID"}, t.Columns...)
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, append([]string{r.ID.String()}, r.Cells...))
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	sep := mutedStyle.Render("|")
	for i, h := range headers {
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")
	total := 0
	for _, w := range widths {
		total += w
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total+len(widths)-1)))
	sb.WriteString("\n")
	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
			if i < len(headers)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderNotices pinta los avisos pendientes del controlador, uno por línea.
func renderNotices(notices []view.Notice) string {
	var sb strings.Builder
	for _, n := range notices {
		style := successStyle
		if n.Level == view.NoticeError {
			style = errorStyle
		}
		sb.WriteString(style.Render(n.Text))
		sb.WriteString("\n")
	}
	return sb.String()
}
