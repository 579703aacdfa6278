// Package sgapi es el único componente del panel que habla con la red:
// envuelve cada llamada a la API REST de S&G con los headers de auth y la
// codificación JSON, y normaliza los fallos en la taxonomía de internal/domain.
package sgapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sg-panel/internal/application/dto"
	"github.com/jhoicas/sg-panel/internal/domain"
	"github.com/jhoicas/sg-panel/internal/infrastructure/metrics"
)

// maxBodyBytes límite de lectura de una respuesta; las colecciones del panel son pequeñas.
const maxBodyBytes = 4 << 20

// TokenSource entrega el bearer token vigente. El gateway lo lee en cada llamada
// y nunca lo modifica; la sesión es del controlador de vista.
type TokenSource interface {
	Token() string
}

// TokenFunc adapta una función a TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Routes rutas de auth del backend (los despliegues no coinciden en los nombres).
type Routes struct {
	SignIn  string
	SignOut string
	SignUp  string
}

// DefaultRoutes rutas que expone el backend Flask de S&G.
func DefaultRoutes() Routes {
	return Routes{
		SignIn:  "/api/auth/login",
		SignOut: "/api/auth/logout",
		SignUp:  "/api/auth/signup",
	}
}

// Config parámetros del gateway.
type Config struct {
	BaseURL    string
	Routes     Routes
	Timeout    time.Duration
	HTTPClient *http.Client // compartido entre sesiones; si es nil se crea uno con Timeout
	Logger     zerolog.Logger
}

// Gateway cliente autenticado de la API de S&G. Se crea uno por sesión de panel
// (cada sesión aporta su TokenSource); el *http.Client subyacente se comparte.
type Gateway struct {
	baseURL    string
	routes     Routes
	httpClient *http.Client
	tokens     TokenSource
	log        zerolog.Logger
}

// New construye el gateway. tokens puede ser nil (llamadas sin Authorization).
func New(cfg Config, tokens TokenSource) *Gateway {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	routes := cfg.Routes
	def := DefaultRoutes()
	if routes.SignIn == "" {
		routes.SignIn = def.SignIn
	}
	if routes.SignOut == "" {
		routes.SignOut = def.SignOut
	}
	if routes.SignUp == "" {
		routes.SignUp = def.SignUp
	}
	return &Gateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		routes:     routes,
		httpClient: hc,
		tokens:     tokens,
		log:        cfg.Logger,
	}
}

// Response respuesta cruda del backend: el gateway no interpreta el cuerpo en
// las llamadas exitosas, lo decide quien llama.
type Response struct {
	StatusCode int
	Header     http.Header
	body       []byte
}

// JSON decodifica el cuerpo en v.
func (r *Response) JSON(v any) error {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return fmt.Errorf("sgapi: %w: respuesta vacía (HTTP %d)", domain.ErrServer, r.StatusCode)
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("sgapi: %w: deserializar respuesta: %w", domain.ErrServer, err)
	}
	return nil
}

// Text devuelve el cuerpo como texto.
func (r *Response) Text() string { return string(r.body) }

// Bytes devuelve el cuerpo sin copiar.
func (r *Response) Bytes() []byte { return r.body }

// Call ejecuta una petición JSON autenticada.
//
// Resultado:
//   - 2xx → (*Response, nil)
//   - otro status → (*Response, *domain.APIError) con el mensaje del campo "error" si existe
//   - sin respuesta → (nil, *domain.ConnectionError)
func (g *Gateway) Call(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("sgapi: serializar request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("sgapi: crear HTTP request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if g.tokens != nil {
		if tok := g.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	route := routeLabel(path)
	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.observe(method, route, "connection", start)
		g.log.Warn().Err(err).
			Str("method", method).Str("path", path).Str("request_id", requestID).
			Msg("sin respuesta del backend")
		return nil, &domain.ConnectionError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		g.observe(method, route, "connection", start)
		return nil, &domain.ConnectionError{Method: method, Path: path, Err: fmt.Errorf("leer respuesta: %w", err)}
	}
	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, body: raw}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &domain.APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(raw, resp.StatusCode),
			Method:  method,
			Path:    path,
		}
		g.observe(method, route, outcome(apiErr), start)
		g.log.Warn().
			Str("method", method).Str("path", path).Str("request_id", requestID).
			Int("status", resp.StatusCode).Str("error", apiErr.Message).
			Msg("backend respondió con error")
		return out, apiErr
	}

	g.observe(method, route, "ok", start)
	g.log.Debug().
		Str("method", method).Str("path", path).Str("request_id", requestID).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).
		Msg("llamada al backend")
	return out, nil
}

func (g *Gateway) observe(method, route, result string, start time.Time) {
	metrics.GatewayRequestsTotal.WithLabelValues(method, route, result).Inc()
	metrics.GatewayRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// errorMessage extrae {"error": "..."} del cuerpo; si no hay, usa el texto del status.
func errorMessage(raw []byte, status int) string {
	var be dto.BackendError
	if err := json.Unmarshal(raw, &be); err == nil && be.Text() != "" {
		return be.Text()
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrAuth):
		return "auth"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "server"
	}
}

// routeLabel sustituye los ids por ":id" para no disparar la cardinalidad de las métricas.
// "/api/products/42?x=1" → "/api/products/:id"; las rutas de auth se dejan tal cual.
func routeLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	if len(parts) < 4 || parts[1] != "api" || parts[2] == "auth" {
		return path
	}
	for i := 3; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
