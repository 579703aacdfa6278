package view

import (
	"time"

	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// Collection secuencia en memoria de un tipo de registro. Se reemplaza entera en
// cada carga aceptada; nunca se parchea.
type Collection[T entity.Record] struct {
	items    []T
	loadedAt time.Time
}

// Replace sustituye el contenido completo.
func (c *Collection[T]) Replace(items []T, at time.Time) {
	c.items = append(make([]T, 0, len(items)), items...)
	c.loadedAt = at
}

// Reset vacía la colección (logout).
func (c *Collection[T]) Reset() {
	c.items = nil
	c.loadedAt = time.Time{}
}

// Items copia del contenido.
func (c *Collection[T]) Items() []T {
	return append([]T(nil), c.items...)
}

// Len número de registros.
func (c *Collection[T]) Len() int { return len(c.items) }

// Loaded indica si hubo al menos una carga.
func (c *Collection[T]) Loaded() bool { return !c.loadedAt.IsZero() }

// Find busca por id en la última carga.
func (c *Collection[T]) Find(id entity.ID) (T, bool) {
	for _, it := range c.items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
