package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Métricas de la API (registro por defecto de Prometheus).
var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartcompta_http_requests_total",
			Help: "Total de peticiones HTTP por método, ruta y status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartcompta_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// Acciones del endpoint multiplexado: transcribe, extract, create.
	factureActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartcompta_facture_actions_total",
			Help: "Acciones sobre /api/factures por resultado",
		},
		[]string{"action", "outcome"}, // ok, demo, error
	)

	paymentLinks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartcompta_payment_links_total",
			Help: "Facturas creadas con enlace de pago pedido, por resultado",
		},
		[]string{"outcome"}, // created, missing
	)
)

// MetricsMiddleware mide cada petición con la ruta declarada (no la URL real, para acotar cardinalidad).
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// MetricsHandler expone /metrics en formato Prometheus.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func countAction(action, outcome string) {
	factureActions.WithLabelValues(action, outcome).Inc()
}
