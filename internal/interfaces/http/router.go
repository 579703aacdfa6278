package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sg-panel/internal/application/dto"
	"github.com/jhoicas/sg-panel/internal/application/report"
	"github.com/jhoicas/sg-panel/internal/domain"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Registry   *Registry
	Reports    *report.Service
	CookieName string
	SessionTTL time.Duration
	Logger     zerolog.Logger
}

// Router registra las rutas del panel. /health, /metrics y /docs los monta main
// fuera de la sesión para no abrir sesiones en los probes.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(MetricsMiddleware())

	session := SessionMiddleware(deps.Registry, deps.CookieName, deps.SessionTTL)

	// Login (público)
	authHandler := NewAuthHandler(deps.Registry, deps.CookieName, deps.SessionTTL, deps.Logger)
	app.Get("/", session, authHandler.Root)
	app.Get("/login", session, authHandler.LoginForm)
	app.Post("/login", session, authHandler.Login)
	app.Post("/logout", session, authHandler.Logout)

	// Estado de la sesión (JSON, público: informa logged_in=false)
	sessionHandler := NewSessionHandler()
	app.Get("/api/session", session, sessionHandler.Get)

	// Panel (requiere login)
	panel := app.Group("/panel", session, RequireLogin())

	reportHandler := NewReportHandler(deps.Reports, deps.Logger)
	panel.Get("/reports/:kind.:format", reportHandler.Export)

	recordHandler := NewRecordHandler()
	panel.Get("/:kind/new", recordHandler.New)
	panel.Post("/:kind/rows", recordHandler.Rows)
	panel.Post("/:kind/editor", recordHandler.Submit)
	panel.Post("/:kind/editor/close", recordHandler.Close)
	panel.Post("/:kind/:id/delete", recordHandler.Delete)

	pageHandler := NewPageHandler()
	panel.Get("/:page", pageHandler.Show)
}

// ErrorHandler responde los errores no tratados por los handlers con
// dto.ErrorResponse, igual que los endpoints JSON.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("error no tratado")
		}
		return c.Status(code).JSON(dto.ErrorResponse{Code: strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(code), " ", "_")), Message: domain.UserMessage(err)})
	}
}
