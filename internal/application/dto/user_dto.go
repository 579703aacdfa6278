package dto

import "encoding/json"

// UserRequest cuerpo de PUT /api/users/:id y de POST al endpoint de registro.
// Password vacío se omite: en una actualización significa "sin cambios".
type UserRequest struct {
	FullName string `json:"full_name" validate:"max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginRequest cuerpo del sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse respuesta del sign-in. El backend actual devuelve access_token;
// versiones anteriores devolvían token. User trae el usuario de auth y Profile la fila de /users.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	Token       string          `json:"token"`
	User        json.RawMessage `json:"user"`
	Profile     json.RawMessage `json:"profile"`
}

// BearerToken devuelve el token presente en la respuesta.
func (r LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// SessionResponse estado de la sesión del navegador (GET /api/session).
type SessionResponse struct {
	LoggedIn  bool           `json:"logged_in"`
	Page      string         `json:"page"`
	Title     string         `json:"title"`
	User      *SessionUser   `json:"user,omitempty"`
	Editor    *EditorSummary `json:"editor,omitempty"`
	Counts    map[string]int `json:"counts"`
	ExpiresAt string         `json:"expires_at,omitempty"`
}

// SessionUser usuario autenticado expuesto en SessionResponse.
type SessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// EditorSummary editor abierto, si lo hay.
type EditorSummary struct {
	Kind     string `json:"kind"`
	Mode     string `json:"mode"`
	RecordID string `json:"record_id,omitempty"`
}
