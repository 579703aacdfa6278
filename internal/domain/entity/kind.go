package entity

// Kind tipo de recurso que el panel administra.
type Kind string

const (
	KindProducts   Kind = "products"
	KindClients    Kind = "clients"
	KindUsers      Kind = "users"
	KindCategories Kind = "categories"
)

// Kinds en orden estable (dashboard, exportaciones).
var Kinds = []Kind{KindProducts, KindClients, KindUsers, KindCategories}

// ParseKind valida el texto recibido desde una URL o la línea de comandos.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Path ruta REST de la colección en el backend.
func (k Kind) Path() string { return "/api/" + string(k) }

// Editable indica si el panel ofrece alta/edición/borrado para el tipo.
func (k Kind) Editable() bool { return k != KindCategories }

// Singular nombre en singular para títulos y mensajes.
func (k Kind) Singular() string {
	switch k {
	case KindProducts:
		return "produto"
	case KindClients:
		return "cliente"
	case KindUsers:
		return "usuário"
	case KindCategories:
		return "categoria"
	default:
		return string(k)
	}
}
