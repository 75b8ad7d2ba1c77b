// Package metrics expone contadores Prometheus de generación, reintentos y chat.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	GenerationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Name:      "generation_requests_total",
		Help:      "Structured generation requests by operation and outcome.",
	}, []string{"operation", "outcome"})

	RateLimitRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "persona",
		Name:      "rate_limit_retries_total",
		Help:      "Backoff retries triggered by rate-limit or quota errors.",
	})

	ChatTurns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Name:      "chat_turns_total",
		Help:      "Chat turns by outcome (reply, rate_limited, error).",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(GenerationRequests, RateLimitRetries, ChatTurns)
}

// Handler sirve el registro propio del servicio.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveGeneration registra el resultado de una operación de generación.
func ObserveGeneration(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	GenerationRequests.WithLabelValues(operation, outcome).Inc()
}
