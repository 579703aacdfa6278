package view

import (
	"strconv"

	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// EditorMode variante del estado del editor modal.
type EditorMode int

const (
	EditorClosed EditorMode = iota
	EditorCreating
	EditorEditing
)

func (m EditorMode) String() string {
	switch m {
	case EditorCreating:
		return "creating"
	case EditorEditing:
		return "editing"
	default:
		return "closed"
	}
}

// FormValues valores del formulario, por nombre de campo JSON.
type FormValues map[string]string

func (v FormValues) clone() FormValues {
	out := make(FormValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Editor estado del único editor modal: Closed, Creating(kind) o Editing(kind, id).
// Values conserva lo que el usuario escribió; Error el último fallo al enviar.
type Editor struct {
	Mode     EditorMode
	Kind     entity.Kind
	RecordID entity.ID
	Values   FormValues
	Error    string
}

// Open indica si hay un editor abierto.
func (e Editor) Open() bool { return e.Mode != EditorClosed }

// Title título del modal.
func (e Editor) Title() string {
	switch e.Mode {
	case EditorCreating:
		return "Adicionar " + e.Kind.Singular()
	case EditorEditing:
		return "Editar " + e.Kind.Singular()
	default:
		return ""
	}
}

// PasswordRequired la contraseña sólo es obligatoria al crear usuarios.
func (e Editor) PasswordRequired() bool {
	return e.Kind == entity.KindUsers && e.Mode == EditorCreating
}

// Value valor de un campo (vacío si no existe).
func (e Editor) Value(field string) string { return e.Values[field] }

// Checked campo booleano del formulario.
func (e Editor) Checked(field string) bool { return parseBool(e.Values[field]) }

func (e Editor) copy() Editor {
	e.Values = e.Values.clone()
	return e
}

// Fields campos del formulario de cada tipo, en orden de presentación.
func Fields(kind entity.Kind) []string {
	switch kind {
	case entity.KindProducts:
		return []string{"name", "price", "stock", "category_id"}
	case entity.KindClients:
		return []string{"name", "email", "phone"}
	case entity.KindUsers:
		return []string{"full_name", "email", "password", "is_admin"}
	default:
		return nil
	}
}

// recordValues precarga el formulario desde un registro existente.
func recordValues(rec entity.Record) FormValues {
	switch r := rec.(type) {
	case entity.Product:
		return FormValues{
			"name":        r.Name,
			"price":       r.Price.StringFixed(2),
			"stock":       strconv.Itoa(r.Stock),
			"category_id": r.CategoryID.String(),
		}
	case entity.Client:
		return FormValues{"name": r.Name, "email": r.Email, "phone": r.Phone}
	case entity.User:
		// la contraseña nunca se precarga: vacía significa "sin cambios"
		return FormValues{"full_name": r.FullName, "email": r.Email, "password": "", "is_admin": strconv.FormatBool(r.IsAdmin)}
	default:
		return FormValues{}
	}
}

func parseBool(s string) bool {
	switch s {
	case "on", "true", "1", "yes", "sim":
		return true
	default:
		return false
	}
}
