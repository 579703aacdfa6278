package view

import (
	"context"

	"github.com/jhoicas/sg-panel/internal/application/dto"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// API puerto de salida hacia el backend de S&G. Lo implementa *sgapi.Gateway;
// el controlador sólo conoce este contrato.
type API interface {
	SignIn(ctx context.Context, email, password string) (string, entity.User, error)
	SignOut(ctx context.Context) error
	SignUp(ctx context.Context, in dto.UserRequest) error

	ListProducts(ctx context.Context) ([]entity.Product, error)
	ListClients(ctx context.Context) ([]entity.Client, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)

	Create(ctx context.Context, kind entity.Kind, body any) error
	Update(ctx context.Context, kind entity.Kind, id entity.ID, body any) error
	Delete(ctx context.Context, kind entity.Kind, id entity.ID) error
}

// TokenSource lo que el gateway necesita del controlador para autenticar cada llamada.
type TokenSource interface {
	Token() string
}

// APIFactory construye el API de una sesión a partir de su fuente de token.
type APIFactory func(tokens TokenSource) API

// Confirm pregunta al usuario antes de una acción destructiva.
type Confirm func(prompt string) bool

// Always confirma sin preguntar (sgctl --yes).
func Always(string) bool { return true }

// Never rechaza siempre.
func Never(string) bool { return false }
