package apiclient

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"studymate/internal/identity"
)

// Metrics records outbound backend calls.
type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the outbound call metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studymate_backend_requests_total",
				Help: "Total number of backend calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studymate_backend_request_duration_seconds",
				Help:    "Backend call latency in seconds.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
	}
	if err := reg.Register(m.requestCount); err != nil {
		return nil, err
	}
	if err := reg.Register(m.requestDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(op string, start time.Time, status int, err error) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(op, outcome(status, err)).Inc()
	m.requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// outcome is the HTTP status for answered calls and a failure class otherwise.
func outcome(status int, err error) string {
	var apiErr *APIError
	var netErr *NetworkError
	var provErr *identity.ProviderError
	switch {
	case err == nil:
		return strconv.Itoa(status)
	case errors.As(err, &apiErr):
		return strconv.Itoa(apiErr.StatusCode)
	case errors.As(err, &netErr):
		return "network_error"
	case errors.Is(err, identity.ErrUnauthenticated):
		return "unauthenticated"
	case errors.As(err, &provErr):
		return "provider_error"
	default:
		return "client_error"
	}
}
