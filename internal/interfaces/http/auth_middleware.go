package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/infrastructure/metrics"
)

// Locals keys para la sesión del navegador en Fiber.
const (
	LocalSessionID  = "session_id"
	LocalController = "controller"
)

// SessionMiddleware resuelve la cookie de sesión y deja el controlador en c.Locals.
// Sin cookie (o con una cookie de una sesión ya vencida) abre una sesión nueva.
func SessionMiddleware(reg *Registry, cookieName string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(cookieName)
		ctrl, ok := reg.Get(id)
		if id == "" || !ok {
			id, ctrl = reg.Create()
		}
		setSessionCookie(c, cookieName, id, ttl)
		c.Locals(LocalSessionID, id)
		c.Locals(LocalController, ctrl)
		return c.Next()
	}
}

func setSessionCookie(c *fiber.Ctx, cookieName, id string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

// RequireLogin exige sesión iniciada; sin ella redirige al login.
// Debe usarse DESPUÉS de SessionMiddleware.
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl := GetController(c)
		if ctrl == nil || !ctrl.LoggedIn() {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// MetricsMiddleware cuenta las peticiones por patrón de ruta y status.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		metrics.PanelRequestsTotal.WithLabelValues(c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}

// GetController devuelve el controlador de la sesión (después de SessionMiddleware).
func GetController(c *fiber.Ctx) *view.Controller {
	v := c.Locals(LocalController)
	if v == nil {
		return nil
	}
	ctrl, _ := v.(*view.Controller)
	return ctrl
}

// GetSessionID devuelve el id de la sesión del navegador.
func GetSessionID(c *fiber.Ctx) string {
	v := c.Locals(LocalSessionID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
