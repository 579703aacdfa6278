package sgapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jhoicas/sg-panel/internal/application/dto"
	"github.com/jhoicas/sg-panel/internal/domain"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// SignIn autentica con email y password y devuelve el bearer token y el usuario.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (string, entity.User, error) {
	var user entity.User
	resp, err := g.Call(ctx, http.MethodPost, g.routes.SignIn, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", user, err
	}
	var out dto.LoginResponse
	if err := resp.JSON(&out); err != nil {
		return "", user, err
	}
	token := out.BearerToken()
	if token == "" {
		return "", user, fmt.Errorf("sgapi: respuesta de login sin token: %w", domain.ErrAuth)
	}

	if len(out.User) > 0 {
		if err := json.Unmarshal(out.User, &user); err != nil {
			return "", user, fmt.Errorf("sgapi: deserializar usuario: %w", err)
		}
	}
	// profile es la fila de la tabla users: manda sobre el usuario de auth.
	if len(out.Profile) > 0 && !bytes.Equal(bytes.TrimSpace(out.Profile), []byte("null")) {
		var profile entity.User
		if err := json.Unmarshal(out.Profile, &profile); err == nil {
			if profile.ID != "" {
				user.ID = profile.ID
			}
			if profile.Email != "" {
				user.Email = profile.Email
			}
			if profile.FullName != "" {
				user.FullName = profile.FullName
			}
			user.IsAdmin = user.IsAdmin || profile.IsAdmin
		}
	}
	return token, user, nil
}

// SignOut notifica el cierre de sesión al backend.
func (g *Gateway) SignOut(ctx context.Context) error {
	_, err := g.Call(ctx, http.MethodPost, g.routes.SignOut, nil)
	return err
}

// SignUp crea un usuario por el endpoint de registro (distinto del de actualización).
func (g *Gateway) SignUp(ctx context.Context, in dto.UserRequest) error {
	_, err := g.Call(ctx, http.MethodPost, g.routes.SignUp, in)
	return err
}

// List trae la colección completa de un tipo. Acepta un arreglo JSON o un
// objeto con "items"/"data" (formato paginado). Cualquier otra respuesta es un
// error: la colección sólo se reemplaza con una lista real del servidor.
func List[T entity.Record](ctx context.Context, g *Gateway, kind entity.Kind) ([]T, error) {
	resp, err := g.Call(ctx, http.MethodGet, kind.Path(), nil)
	if err != nil {
		return nil, err
	}
	raw := bytes.TrimSpace(resp.Bytes())
	if len(raw) > 0 && raw[0] == '{' {
		var wrapped struct {
			Items json.RawMessage `json:"items"`
			Data  json.RawMessage `json:"data"`
		}
		if err := resp.JSON(&wrapped); err != nil {
			return nil, err
		}
		list := wrapped.Items
		if isAbsent(list) {
			list = wrapped.Data
		}
		if isAbsent(list) {
			return nil, fmt.Errorf("sgapi: %w: GET %s sin lista (ni items ni data)", domain.ErrServer, kind.Path())
		}
		raw = list
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("sgapi: %w: GET %s: %w", domain.ErrServer, kind.Path(), err)
	}
	if items == nil {
		if isAbsent(raw) {
			return nil, fmt.Errorf("sgapi: %w: GET %s devolvió null", domain.ErrServer, kind.Path())
		}
		items = []T{}
	}
	return items, nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// ListProducts, ListClients, ListUsers y ListCategories fijan el tipo de List
// para que el gateway cumpla la interfaz que consume el controlador de vista.
func (g *Gateway) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return List[entity.Product](ctx, g, entity.KindProducts)
}

func (g *Gateway) ListClients(ctx context.Context) ([]entity.Client, error) {
	return List[entity.Client](ctx, g, entity.KindClients)
}

func (g *Gateway) ListUsers(ctx context.Context) ([]entity.User, error) {
	return List[entity.User](ctx, g, entity.KindUsers)
}

func (g *Gateway) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return List[entity.Category](ctx, g, entity.KindCategories)
}

// Create POST /api/<kind>.
func (g *Gateway) Create(ctx context.Context, kind entity.Kind, body any) error {
	_, err := g.Call(ctx, http.MethodPost, kind.Path(), body)
	return err
}

// Update PUT /api/<kind>/<id>.
func (g *Gateway) Update(ctx context.Context, kind entity.Kind, id entity.ID, body any) error {
	_, err := g.Call(ctx, http.MethodPut, recordPath(kind, id), body)
	return err
}

// Delete DELETE /api/<kind>/<id>.
func (g *Gateway) Delete(ctx context.Context, kind entity.Kind, id entity.ID) error {
	_, err := g.Call(ctx, http.MethodDelete, recordPath(kind, id), nil)
	return err
}

func recordPath(kind entity.Kind, id entity.ID) string {
	return kind.Path() + "/" + url.PathEscape(id.String())
}
