package view

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// Table modelo de vista de una colección: una fila por registro.
type Table struct {
	Kind    entity.Kind
	Columns []string
	Rows    []Row
	Empty   string // texto cuando no hay filas
}

// Row fila de la tabla. ID es el del registro: las acciones lo reenvían tal cual.
type Row struct {
	ID      entity.ID
	Cells   []string
	Actions []RowAction
}

// RowAction botón de una fila (editar / excluir).
type RowAction struct {
	Name  string
	Label string
}

// Option entrada de un <select>.
type Option struct {
	Value string
	Label string
}

// Acciones por fila.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// FormatPrice "R$ 9.99".
func FormatPrice(p decimal.Decimal) string {
	return "R$ " + p.StringFixed(2)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

// Columns encabezados por tipo.
func Columns(kind entity.Kind) []string {
	switch kind {
	case entity.KindProducts:
		return []string{"Nome", "Preço", "Estoque", "Categoria"}
	case entity.KindClients:
		return []string{"Nome", "Email", "Telefone"}
	case entity.KindUsers:
		return []string{"Nome", "Email", "Admin"}
	case entity.KindCategories:
		return []string{"ID", "Nome"}
	default:
		return nil
	}
}

// ProductCells celdas de un producto; categories resuelve el nombre de la categoría.
func ProductCells(p entity.Product, categories map[entity.ID]string) []string {
	category := "N/A"
	if name, ok := categories[p.CategoryID]; ok && name != "" {
		category = name
	}
	return []string{p.Name, FormatPrice(p.Price), strconv.Itoa(p.Stock), category}
}

// ClientCells celdas de un cliente.
func ClientCells(c entity.Client) []string {
	return []string{c.Name, c.Email, orNA(c.Phone)}
}

// UserCells celdas de un usuario.
func UserCells(u entity.User) []string {
	return []string{orNA(u.FullName), u.Email, yesNo(u.IsAdmin)}
}

// CategoryCells celdas de una categoría.
func CategoryCells(c entity.Category) []string {
	return []string{c.ID.String(), c.Name}
}

func categoryNames(cats []entity.Category) map[entity.ID]string {
	out := make(map[entity.ID]string, len(cats))
	for _, c := range cats {
		out[c.ID] = c.Name
	}
	return out
}

func buildTable[T entity.Record](kind entity.Kind, items []T, cells func(T) []string) Table {
	t := Table{
		Kind:    kind,
		Columns: Columns(kind),
		Rows:    make([]Row, 0, len(items)),
		Empty:   emptyText(kind),
	}
	for _, it := range items {
		row := Row{ID: it.RecordID(), Cells: cells(it)}
		if kind.Editable() {
			row.Actions = []RowAction{
				{Name: ActionEdit, Label: "Editar"},
				{Name: ActionDelete, Label: "Excluir"},
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func emptyText(kind entity.Kind) string {
	if kind == entity.KindCategories {
		return "Nenhuma categoria cadastrada."
	}
	return "Nenhum " + kind.Singular() + " cadastrado."
}
