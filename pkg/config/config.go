package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del panel (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Backend BackendConfig
	Session SessionConfig
	CLI     CLIConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP del panel.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig describe la API REST de S&G que consume el panel.
// Las rutas de auth son configurables porque los despliegues no coinciden en los nombres.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
	SignInPath     string
	SignOutPath    string
	SignUpPath     string
}

// Timeout devuelve el timeout de red para cada llamada al backend.
func (c BackendConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig sesiones del navegador (en memoria del proceso).
type SessionConfig struct {
	CookieName string
	TTLMinutes int
}

// TTL devuelve el tiempo de inactividad tras el cual se descarta una sesión.
func (c SessionConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// CLIConfig credenciales por defecto de sgctl (los flags tienen prioridad).
type CLIConfig struct {
	Email    string
	Password string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, SG_API_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración a partir de una instancia ya preparada (útil en tests).
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "sg-panel"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8081),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getString(v, "SG_API_URL", "http://localhost:5000"), "/"),
			TimeoutSeconds: getInt(v, "SG_API_TIMEOUT_SECONDS", 15),
			SignInPath:     getString(v, "SG_SIGNIN_PATH", "/api/auth/login"),
			SignOutPath:    getString(v, "SG_SIGNOUT_PATH", "/api/auth/logout"),
			SignUpPath:     getString(v, "SG_SIGNUP_PATH", "/api/auth/signup"),
		},
		Session: SessionConfig{
			CookieName: getString(v, "SESSION_COOKIE", "sg_session"),
			TTLMinutes: getInt(v, "SESSION_TTL_MINUTES", 60),
		},
		CLI: CLIConfig{
			Email:    getString(v, "SG_EMAIL", ""),
			Password: getString(v, "SG_PASSWORD", ""),
		},
	}

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("config: SG_API_URL vacío")
	}
	if cfg.HTTP.Port <= 0 {
		return nil, fmt.Errorf("config: HTTP_PORT inválido (%d)", cfg.HTTP.Port)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
