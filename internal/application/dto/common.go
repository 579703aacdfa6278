package dto

// ErrorResponse cuerpo de error HTTP de los endpoints JSON del panel.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BackendError cuerpo de error que devuelve la API de S&G ({"error": "..."}).
// Algunos despliegues usan "message"; se aceptan ambos.
type BackendError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Text devuelve el primer mensaje no vacío.
func (b BackendError) Text() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}
