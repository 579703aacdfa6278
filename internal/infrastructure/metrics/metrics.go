// Package metrics define y registra las métricas Prometheus del panel.
// Es la única fuente de nombres, labels y textos de ayuda.
//
// Las métricas se registran en el registry por defecto al importar el paquete;
// /metrics las expone vía promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sgpanel"

// ── Gateway (llamadas a la API de S&G) ────────────────────────────────────────

// GatewayRequestsTotal cuenta las llamadas salientes.
// Labels:
//   - method: GET, POST, PUT, DELETE
//   - route: ruta con los ids sustituidos por ":id" (ej. "/api/products/:id")
//   - outcome: "ok", "validation", "auth", "not_found", "server" o "connection"
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total de llamadas a la API de S&G, por método, ruta y resultado.",
	},
	[]string{"method", "route", "outcome"},
)

// GatewayRequestDuration latencia de cada llamada saliente (incluye leer el cuerpo).
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duración de las llamadas a la API de S&G.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Panel (peticiones del navegador) ──────────────────────────────────────────

// PanelRequestsTotal cuenta las peticiones atendidas por el servidor del panel.
// Labels:
//   - route: patrón de ruta registrado en Fiber (ej. "/panel/:page")
//   - status: código HTTP como texto
var PanelRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total de peticiones HTTP atendidas por el panel.",
	},
	[]string{"route", "status"},
)

// ActiveSessions número de sesiones de navegador vivas en el registro.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sesiones de navegador activas en memoria.",
	},
)

// StaleResponsesTotal respuestas descartadas porque la vista que las pidió ya no está activa.
var StaleResponsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_total",
		Help:      "Cargas de colección descartadas por llegar tarde.",
	},
	[]string{"kind"},
)
