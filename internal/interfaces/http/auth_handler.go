package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sg-panel/internal/application/view"
)

// AuthHandler maneja login y logout del panel.
type AuthHandler struct {
	reg        *Registry
	cookieName string
	ttl        time.Duration
	log        zerolog.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(reg *Registry, cookieName string, ttl time.Duration, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{reg: reg, cookieName: cookieName, ttl: ttl, log: log}
}

// Root redirige a la página actual o al login.
// GET /
func (h *AuthHandler) Root(c *fiber.Ctx) error {
	ctrl := GetController(c)
	if ctrl.LoggedIn() {
		return c.Redirect("/panel/"+string(ctrl.Page()), fiber.StatusSeeOther)
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// LoginForm muestra el formulario de login.
// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	ctrl := GetController(c)
	if ctrl.LoggedIn() {
		return c.Redirect("/panel/"+string(ctrl.Page()), fiber.StatusSeeOther)
	}
	return renderLogin(c, ctrl, fiber.StatusOK, "")
}

// Login autentica con email y senha del formulario.
// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ctrl := GetController(c)
	email := c.FormValue("email")
	if err := ctrl.Login(c.UserContext(), email, c.FormValue("password")); err != nil {
		return renderLogin(c, ctrl, statusFor(err), email)
	}
	// El id de sesión cambia al autenticarse; el de antes del login deja de valer.
	if newID, ok := h.reg.Rotate(GetSessionID(c)); ok {
		setSessionCookie(c, h.cookieName, newID, h.ttl)
		c.Locals(LocalSessionID, newID)
	}
	h.log.Info().Str("session_id", GetSessionID(c)).Msg("login en el panel")
	return c.Redirect("/panel/"+string(view.PageDashboard), fiber.StatusSeeOther)
}

// Logout cierra la sesión y la saca del registro; siempre termina en el login.
// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	GetController(c).Logout(c.UserContext())
	h.reg.Delete(GetSessionID(c))
	c.ClearCookie(h.cookieName)
	return c.Redirect("/login", fiber.StatusSeeOther)
}
