// Package testutil ofrece un backend S&G en memoria para los tests del gateway,
// del controlador de vista y de los handlers HTTP.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgjwt "github.com/jhoicas/sg-panel/pkg/jwt"
)

// Credenciales válidas del backend de prueba.
const (
	AdminEmail    = "admin@sg.com"
	AdminPassword = "secret123"
	AdminID       = "u-admin"
	tokenSecret   = "stub-backend-secret"
)

// Request petición recibida por el backend de prueba.
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// Reply respuesta fija registrada con On.
type Reply struct {
	Status int
	Body   any
}

// Backend API S&G en memoria: login, logout, signup y CRUD de products,
// clients, users y categories sobre mapas JSON.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	requests  []Request
	overrides map[string]http.HandlerFunc
	data      map[string][]map[string]any
	nextID    int
}

// NewBackend arranca el servidor y lo cierra al terminar el test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		overrides: map[string]http.HandlerFunc{},
		data: map[string][]map[string]any{
			"products":   {},
			"clients":    {},
			"users":      {{"id": AdminID, "email": AdminEmail, "full_name": "Admin S&G", "is_admin": true}},
			"categories": {{"id": "c1", "name": "Ferramentas"}, {"id": "c2", "name": "Elétricos"}},
		},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL base del backend.
func (b *Backend) URL() string { return b.Server.URL }

// Seed reemplaza la colección de un tipo.
func (b *Backend) Seed(kind string, records ...map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[kind] = append([]map[string]any{}, records...)
}

// On registra una respuesta fija para "METHOD /ruta" que tiene prioridad sobre el CRUD.
func (b *Backend) On(method, path string, reply Reply) {
	b.OnFunc(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, reply.Status, reply.Body)
	})
}

// OnFunc registra un handler arbitrario para "METHOD /ruta".
func (b *Backend) OnFunc(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[method+" "+path] = h
}

// Clear elimina una respuesta registrada con On/OnFunc.
func (b *Backend) Clear(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.overrides, method+" "+path)
}

// Requests copia de las peticiones recibidas.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count número de peticiones recibidas con ese método y ruta.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last última petición con ese método y ruta; ok=false si no hubo ninguna.
func (b *Backend) Last(method, path string) (Request, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Request{}, false
}

// Token genera un access token válido como el que devuelve el login.
func Token(ttl time.Duration) string {
	tok, err := pkgjwt.Generate(tokenSecret, AdminID, AdminEmail, ttl)
	if err != nil {
		panic(err)
	}
	return tok
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, Request{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: body})
	override := b.overrides[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if override != nil {
		override(w, r)
		return
	}

	switch r.URL.Path {
	case "/api/auth/login", "/api/auth/signin":
		b.login(w, body)
		return
	case "/api/auth/logout", "/api/auth/signout":
		writeJSON(w, http.StatusOK, map[string]any{"message": "Logout successful!"})
		return
	case "/api/auth/signup":
		b.signup(w, body)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing token"})
		return
	}
	kind := parts[1]
	id := ""
	if len(parts) > 2 {
		id = parts[2]
	}
	b.crud(w, r.Method, kind, id, body)
}

func (b *Backend) login(w http.ResponseWriter, body map[string]any) {
	if body["email"] != AdminEmail || body["password"] != AdminPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Login successful!",
		"access_token": Token(time.Hour),
		"user":         map[string]any{"id": AdminID, "email": AdminEmail},
		"profile":      map[string]any{"id": AdminID, "email": AdminEmail, "full_name": "Admin S&G", "is_admin": true},
	})
}

func (b *Backend) signup(w http.ResponseWriter, body map[string]any) {
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Email and password are required"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.data["users"] {
		if u["email"] == email {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "User already registered"})
			return
		}
	}
	b.nextID++
	user := map[string]any{"id": fmt.Sprintf("u%d", b.nextID), "email": email, "full_name": body["full_name"], "is_admin": false}
	b.data["users"] = append(b.data["users"], user)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User created successfully!", "user": user})
}

func (b *Backend) crud(w http.ResponseWriter, method, kind, id string, body map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list, ok := b.data[kind]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}
	idx := -1
	for i, rec := range list {
		if fmt.Sprint(rec["id"]) == id {
			idx = i
		}
	}

	switch {
	case method == http.MethodGet && id == "":
		writeJSON(w, http.StatusOK, list)
	case method == http.MethodGet && idx >= 0:
		writeJSON(w, http.StatusOK, list[idx])
	case method == http.MethodPost && id == "":
		b.nextID++
		rec := map[string]any{"id": fmt.Sprintf("%s-%d", kind[:1], b.nextID)}
		for k, v := range body {
			rec[k] = v
		}
		b.data[kind] = append(list, rec)
		writeJSON(w, http.StatusCreated, []map[string]any{rec})
	case method == http.MethodPut && idx >= 0:
		for k, v := range body {
			list[idx][k] = v
		}
		writeJSON(w, http.StatusOK, []map[string]any{list[idx]})
	case method == http.MethodDelete && idx >= 0:
		b.data[kind] = append(list[:idx:idx], list[idx+1:]...)
		writeJSON(w, http.StatusOK, map[string]any{"message": "deleted successfully!"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "record not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
