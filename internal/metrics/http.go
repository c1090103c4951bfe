package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Actor label values
const (
	ActorUser      = "user"
	ActorAnonymous = "anonymous"
)

// UnmatchedRoute labels requests that hit no route
const UnmatchedRoute = "unmatched"

// HTTP request collectors for the circles API
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTP registers the request collectors on reg
func NewHTTP(reg prometheus.Registerer) *HTTP {
	f := promauto.With(reg)
	return &HTTP{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circles_http_requests_total",
				Help: "API requests by route template, status and whether an actor was signed in",
			},
			[]string{"method", "route", "status", "actor"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "circles_http_request_duration_seconds",
				Help:    "API request latency",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		size: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "circles_http_response_size_bytes",
				Help:    "API response body size",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),
		inFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "circles_http_in_flight_requests",
				Help: "API requests currently being served",
			},
		),
	}
}

// Begin marks a request in flight; call the returned func when it is done
func (h *HTTP) Begin() func() {
	h.inFlight.Inc()
	return h.inFlight.Dec
}

// Observe records one finished request. An empty route counts as UnmatchedRoute.
func (h *HTTP) Observe(method, route string, status int, userID string, elapsed time.Duration, size int) {
	if route == "" {
		route = UnmatchedRoute
	}
	actor := ActorAnonymous
	if userID != "" {
		actor = ActorUser
	}
	if size < 0 {
		size = 0
	}
	h.requests.WithLabelValues(method, route, strconv.Itoa(status), actor).Inc()
	h.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	h.size.WithLabelValues(method, route).Observe(float64(size))
}
