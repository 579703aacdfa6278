package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Taxonomía de fallos de la API (sin dependencias externas).
var (
	ErrValidation = errors.New("datos rechazados por el servidor")
	ErrAuth       = errors.New("no autorizado")
	ErrConnection = errors.New("sin conexión con el servidor")
	ErrNotFound   = errors.New("recurso no encontrado")
	ErrServer     = errors.New("error interno del servidor")
)

// Errores locales del panel.
var (
	ErrNotLoggedIn     = errors.New("sesión no iniciada")
	ErrEditorOpen      = errors.New("ya hay un editor abierto")
	ErrEditorClosed    = errors.New("no hay editor abierto")
	ErrUnknownKind     = errors.New("tipo de recurso desconocido")
	ErrUnknownPage     = errors.New("página desconocida")
	ErrRecordNotLoaded = errors.New("registro no cargado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrCancelled       = errors.New("operación cancelada")
)

// userMessages textos que ve el usuario (pt-BR) para los errores sin mensaje
// propio. El orden importa: se usa el primero que coincide con errors.Is.
var userMessages = []struct {
	err  error
	text string
}{
	{ErrNotLoggedIn, "Sessão não iniciada. Entre novamente."},
	{ErrEditorOpen, "Já existe um formulário aberto. Feche-o antes de continuar."},
	{ErrEditorClosed, "Nenhum formulário aberto."},
	{ErrUnknownKind, "Recurso desconhecido."},
	{ErrUnknownPage, "Página desconhecida."},
	{ErrRecordNotLoaded, "Registro não encontrado na lista. Atualize a página."},
	{ErrCancelled, "Operação cancelada."},
	{ErrInvalidInput, "Dados inválidos."},
	{ErrAuth, "Não autorizado."},
	{ErrNotFound, "Registro não encontrado."},
	{ErrValidation, "Dados rejeitados pelo servidor."},
	{ErrServer, "Resposta inválida do servidor."},
}

// APIError respuesta no exitosa del backend. Message es el campo "error" del cuerpo
// cuando existe; si no, el texto del status HTTP.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap clasifica el status dentro de la taxonomía para poder usar errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return ErrAuth
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 400 && e.Status < 500:
		return ErrValidation
	default:
		return ErrServer
	}
}

// ConnectionError la petición no obtuvo respuesta (DNS, conexión rechazada, timeout).
type ConnectionError struct {
	Method string
	Path   string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, ErrConnection, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}

// UserMessage devuelve el texto apto para mostrar al usuario a partir de cualquier error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrConnection) {
		return "Não foi possível conectar ao servidor."
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	return err.Error()
}

// ValidationError formulario rechazado antes de enviarlo al backend.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
