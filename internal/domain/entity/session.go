package entity

import "time"

// Session identidad autenticada más el bearer token. Existe desde un login exitoso
// hasta el logout o el rechazo del token.
type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time // cero si el token no informa expiración
	StartedAt time.Time
}

// Expired indica si el token ya venció en el instante now.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
