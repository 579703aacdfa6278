package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/sg-panel/docs"
	"github.com/jhoicas/sg-panel/internal/application/report"
	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/infrastructure/csvexport"
	infrapdf "github.com/jhoicas/sg-panel/internal/infrastructure/pdf"
	"github.com/jhoicas/sg-panel/internal/infrastructure/sgapi"
	httpRouter "github.com/jhoicas/sg-panel/internal/interfaces/http"
	"github.com/jhoicas/sg-panel/pkg/config"
	"github.com/jhoicas/sg-panel/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Backend.BaseURL).
		Msg("iniciando panel")

	// Un único cliente HTTP compartido por todas las sesiones (pool de conexiones).
	httpClient := &http.Client{Timeout: cfg.Backend.Timeout()}
	gatewayCfg := sgapi.Config{
		BaseURL: cfg.Backend.BaseURL,
		Routes: sgapi.Routes{
			SignIn:  cfg.Backend.SignInPath,
			SignOut: cfg.Backend.SignOutPath,
			SignUp:  cfg.Backend.SignUpPath,
		},
		HTTPClient: httpClient,
		Logger:     log.Component("sgapi"),
	}
	viewLog := log.Component("view")
	registry := httpRouter.NewRegistry(cfg.Session.TTL(), func() *view.Controller {
		return view.New(view.Deps{
			NewAPI: func(tokens view.TokenSource) view.API { return sgapi.New(gatewayCfg, tokens) },
			Logger: viewLog,
		})
	})

	// Relatórios: PDF (Maroto) y CSV Windows-1252
	reports := report.NewService(infrapdf.NewMarotoPDFGenerator(), csvexport.New())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Views:        httpRouter.NewViews(),
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "S&G Panel",
	}))
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sessions": registry.Len()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Registry:   registry,
		Reports:    reports,
		CookieName: cfg.Session.CookieName,
		SessionTTL: cfg.Session.TTL(),
		Logger:     log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	httpClient.CloseIdleConnections()

	log.Info().Msg("panel detenido")
}
