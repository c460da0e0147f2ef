// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_http_requests_total",
			Help: "HTTP requests labeled by route and status code",
		},
		[]string{"route", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arcade_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	gamesStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_games_started_total",
			Help: "Games started (wager debited) by game kind",
		},
		[]string{"kind"},
	)
	gameOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_game_outcomes_total",
			Help: "Recorded game outcomes by game kind and result",
		},
		[]string{"kind", "result"},
	)
	pointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_points_awarded_total",
			Help: "Points credited from game outcomes by game kind",
		},
		[]string{"kind"},
	)
	tokensExchangedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arcade_tokens_exchanged_total",
			Help: "Tokens bought with points in the shop",
		},
	)
	adminActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_admin_actions_total",
			Help: "Admin mutations by action and outcome",
		},
		[]string{"action", "outcome"},
	)
)

// RecordRequest counts an HTTP request and observes its latency.
func RecordRequest(route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func RecordGameStarted(kind string) {
	gamesStartedTotal.WithLabelValues(kind).Inc()
}

// RecordOutcome counts an outcome and the points it credited.
func RecordOutcome(kind string, won bool, points int64) {
	result := "lost"
	if won {
		result = "won"
	}
	gameOutcomesTotal.WithLabelValues(kind, result).Inc()
	if points > 0 {
		pointsAwardedTotal.WithLabelValues(kind).Add(float64(points))
	}
}

func RecordExchange(tokens int64) {
	tokensExchangedTotal.Add(float64(tokens))
}

func RecordAdminAction(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	adminActionsTotal.WithLabelValues(action, outcome).Inc()
}
