package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/infrastructure/sgapi"
	"github.com/jhoicas/sg-panel/pkg/config"
	"github.com/jhoicas/sg-panel/pkg/logger"
)

// options flags globales.
type options struct {
	apiURL   string
	email    string
	password string
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "sgctl",
		Short: "Administra productos, clientes y usuarios de S&G",
		Long: `sgctl inicia sesión en la API de S&G y ejecuta una operación del panel.

Las credenciales salen de --email/--password o de SG_EMAIL/SG_PASSWORD.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.apiURL != "" {
				cfg.Backend.BaseURL = opts.apiURL
			}
			if opts.email == "" {
				opts.email = cfg.CLI.Email
			}
			if opts.password == "" {
				opts.password = cfg.CLI.Password
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "URL base de la API (por defecto SG_API_URL)")
	root.PersistentFlags().StringVar(&opts.email, "email", "", "email de login (por defecto SG_EMAIL)")
	root.PersistentFlags().StringVar(&opts.password, "password", "", "senha (por defecto SG_PASSWORD)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "nivel de log (trace, debug, info, warn, error)")

	root.AddCommand(
		newListCmd(opts),
		newSaveCmd(opts),
		newDeleteCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// openPanel crea el controlador e inicia sesión. El cierre hace logout.
func openPanel(ctx context.Context, opts *options, stderr io.Writer) (*view.Controller, func(), error) {
	if opts.email == "" || opts.password == "" {
		return nil, nil, fmt.Errorf("faltan credenciales: use --email/--password o SG_EMAIL/SG_PASSWORD")
	}
	log := logger.New(logger.Config{Env: "development", Level: opts.logLevel, Output: stderr})

	backend := opts.cfg.Backend
	gatewayCfg := sgapi.Config{
		BaseURL: backend.BaseURL,
		Routes: sgapi.Routes{
			SignIn:  backend.SignInPath,
			SignOut: backend.SignOutPath,
			SignUp:  backend.SignUpPath,
		},
		HTTPClient: &http.Client{Timeout: backend.Timeout()},
		Logger:     log.Component("sgapi"),
	}
	ctrl := view.New(view.Deps{
		NewAPI: func(tokens view.TokenSource) view.API { return sgapi.New(gatewayCfg, tokens) },
		Logger: log.Component("view"),
	})
	if err := ctrl.Login(ctx, opts.email, opts.password); err != nil {
		if msg := ctrl.Snapshot().LoginError; msg != "" {
			return nil, nil, errors.New(msg)
		}
		return nil, nil, err
	}
	closeFn := func() {
		logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ctrl.Logout(logoutCtx)
	}
	return ctrl, closeFn, nil
}

