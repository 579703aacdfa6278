package http

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/infrastructure/metrics"
)

// ControllerFactory crea el controlador de una sesión nueva.
type ControllerFactory func() *view.Controller

type sessionEntry struct {
	ctrl     *view.Controller
	lastSeen time.Time
}

// Registry sesiones de navegador en memoria, indexadas por el id de la cookie.
// Las sesiones inactivas más de ttl se eliminan en el siguiente acceso.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	factory  ControllerFactory
	now      func() time.Time
}

// NewRegistry construye el registro.
func NewRegistry(ttl time.Duration, factory ControllerFactory) *Registry {
	return &Registry{
		sessions: map[string]*sessionEntry{},
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Get devuelve el controlador de la sesión y renueva su actividad.
func (r *Registry) Get(id string) (*view.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.ctrl, true
}

// Create abre una sesión nueva con un controlador en LoggedOut.
func (r *Registry) Create() (string, *view.Controller) {
	ctrl := r.factory()
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.sessions[id] = &sessionEntry{ctrl: ctrl, lastSeen: r.now()}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return id, ctrl
}

// Rotate mueve el controlador de la sesión id a un id nuevo y descarta el
// anterior. Si id no existe devuelve ok=false.
func (r *Registry) Rotate(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return "", false
	}
	delete(r.sessions, id)
	newID := uuid.NewString()
	e.lastSeen = r.now()
	r.sessions[newID] = e
	return newID, true
}

// Delete elimina la sesión.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}

// Len número de sesiones vivas.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	return len(r.sessions)
}

func (r *Registry) sweepLocked() {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.now().Add(-r.ttl)
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}
