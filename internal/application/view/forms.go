package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sg-panel/internal/application/dto"
	"github.com/jhoicas/sg-panel/internal/domain"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// validate instancia compartida (validator.Validate es seguro para uso concurrente
// y cachea la información de los structs).
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// los mensajes usan el nombre JSON del campo, que es el del formulario
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// buildRequest traduce el formulario al cuerpo de la petición y lo valida antes de enviarlo.
func buildRequest(kind entity.Kind, mode EditorMode, values FormValues) (any, error) {
	get := func(k string) string { return strings.TrimSpace(values[k]) }

	var req any
	switch kind {
	case entity.KindProducts:
		price, err := parsePrice(get("price"))
		if err != nil {
			return nil, err
		}
		stock := 0
		if s := get("stock"); s != "" {
			stock, err = strconv.Atoi(s)
			if err != nil {
				return nil, &domain.ValidationError{Message: "Estoque deve ser um número inteiro."}
			}
		}
		req = dto.ProductRequest{
			Name:       get("name"),
			Price:      json.Number(price.String()),
			Stock:      stock,
			CategoryID: get("category_id"),
		}
	case entity.KindClients:
		req = dto.ClientRequest{Name: get("name"), Email: get("email"), Phone: get("phone")}
	case entity.KindUsers:
		in := dto.UserRequest{
			FullName: get("full_name"),
			Email:    get("email"),
			Password: values["password"], // sin TrimSpace: los espacios son parte de la contraseña
			IsAdmin:  parseBool(get("is_admin")),
		}
		if mode == EditorCreating && in.Password == "" {
			return nil, &domain.ValidationError{Message: "A senha é obrigatória para novos usuários."}
		}
		req = in
	default:
		return nil, fmt.Errorf("view: %w: %s", domain.ErrUnknownKind, kind)
	}

	if err := validate.Struct(req); err != nil {
		return nil, humanize(err)
	}
	return req, nil
}

// parsePrice acepta "9.99" y "9,99"; el precio no puede ser negativo.
func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, &domain.ValidationError{Message: "Preço é obrigatório."}
	}
	price, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, &domain.ValidationError{Message: "Preço inválido."}
	}
	if price.IsNegative() {
		return decimal.Decimal{}, &domain.ValidationError{Message: "Preço não pode ser negativo."}
	}
	return price, nil
}

// humanize convierte validator.ValidationErrors en un mensaje legible.
func humanize(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return &domain.ValidationError{Message: strings.Join(msgs, "; ")}
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " é obrigatório"
	case "email":
		return field + " deve ser um email válido"
	case "gte":
		return fmt.Sprintf("%s deve ser maior ou igual a %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s deve ter pelo menos %s caracteres", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", field, fe.Param())
	default:
		return fmt.Sprintf("%s inválido (%s)", field, fe.Tag())
	}
}
