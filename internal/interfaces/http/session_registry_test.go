package http

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/sg-panel/internal/application/view"
)

func TestRegistry_ExpiraSesionesInactivas(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(30*time.Minute, func() *view.Controller {
		return view.New(view.Deps{NewAPI: func(view.TokenSource) view.API { return nil }, Logger: zerolog.Nop()})
	})
	reg.now = func() time.Time { return now }

	id, ctrl := reg.Create()
	got, ok := reg.Get(id)
	assert.True(t, ok)
	assert.Same(t, ctrl, got)

	now = now.Add(20 * time.Minute)
	_, ok = reg.Get(id)
	assert.True(t, ok, "el acceso renueva la actividad")

	now = now.Add(31 * time.Minute)
	_, ok = reg.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())

	_, ok = reg.Get("")
	assert.False(t, ok)
}

func TestRegistry_Delete(t *testing.T) {
	reg := NewRegistry(0, func() *view.Controller {
		return view.New(view.Deps{NewAPI: func(view.TokenSource) view.API { return nil }, Logger: zerolog.Nop()})
	})
	a, _ := reg.Create()
	b, _ := reg.Create()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, reg.Len())

	reg.Delete(a)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RotateMueveElControlador(t *testing.T) {
	reg := NewRegistry(0, func() *view.Controller {
		return view.New(view.Deps{NewAPI: func(view.TokenSource) view.API { return nil }, Logger: zerolog.Nop()})
	})
	old, ctrl := reg.Create()

	fresh, ok := reg.Rotate(old)
	assert.True(t, ok)
	assert.NotEqual(t, old, fresh)

	_, ok = reg.Get(old)
	assert.False(t, ok, "el id anterior deja de valer")
	got, ok := reg.Get(fresh)
	assert.True(t, ok)
	assert.Same(t, ctrl, got)
	assert.Equal(t, 1, reg.Len())

	_, ok = reg.Rotate("desconocido")
	assert.False(t, ok)
}
