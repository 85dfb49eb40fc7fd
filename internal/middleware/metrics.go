package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters for the badge workflows.
var (
	BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaguild_badges_awarded_total",
		Help: "Number of badge instances created, by tier ('' for untiered).",
	}, []string{"tier"})

	BadgesRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "viaguild_badges_revoked_total",
		Help: "Number of badge instances revoked.",
	})

	AllocationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaguild_allocation_rejections_total",
		Help: "Awards rejected because the giver's tier allocation was exhausted.",
	}, []string{"tier"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "viaguild_active_websockets",
		Help: "Currently open websocket connections.",
	})

	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaguild_websocket_dropped_messages_total",
		Help: "Realtime messages dropped because a client buffer was closed or full.",
	}, []string{"reason"})
)

// InitMetrics creates the Prometheus HTTP middleware for the service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-metrics middleware handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
