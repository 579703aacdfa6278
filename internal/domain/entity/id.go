package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identificador asignado por el servidor. Supabase devuelve uuid (texto) o
// serial (número) según la tabla; ambos se guardan en su forma textual.
type ID string

// UnmarshalJSON acepta "abc", 42 o null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("entity: id inválido %s", string(b))
		}
		*id = ID(n.String())
		return nil
	}
}

func (id ID) String() string { return string(id) }

// Record cualquier entidad que viaja en una colección del panel.
type Record interface {
	RecordID() ID
}
