package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims claims que el backend de S&G emite en el access token (emitidos por Supabase).
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// TokenInfo datos del token que el panel necesita para gestionar la sesión.
type TokenInfo struct {
	Subject   string
	Email     string
	ExpiresAt time.Time // cero si el token no trae exp
}

// Expired indica si el token ya venció en el instante now.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect lee los claims del token SIN verificar la firma.
// El panel no tiene la clave del backend; la validación real la hace la API en cada llamada.
// Sólo se usa para conocer la expiración y cerrar la sesión local a tiempo.
func Inspect(tokenString string) (TokenInfo, error) {
	if tokenString == "" {
		return TokenInfo{}, fmt.Errorf("jwt: token vacío")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("jwt: token mal formado: %w", err)
	}
	info := TokenInfo{Subject: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// Generate genera un token HS256 con subject, email y expiración.
// Lo usan los backends de prueba y la herramienta sgctl en modo demo.
func Generate(secret, subject, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  "authenticated",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
