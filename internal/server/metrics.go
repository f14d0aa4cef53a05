package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "fstree"

// instrument registers request metrics on registry and returns a middleware that records them.
func instrument(registry prometheus.Registerer, label string) func(http.Handler) http.Handler {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      label + "_requests_total",
		Help:      "A counter of total requests",
	}, []string{"code", "method"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      label + "_request_duration_seconds",
		Help:      "A histogram of request duration",
		Buckets:   []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"code", "method"})
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      label + "_in_flight_requests",
		Help:      "A gauge of requests currently in flight",
	})
	responseSize := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      label + "_response_size_bytes",
		Help:      "A histogram of response size",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{})
	registry.MustRegister(counter, duration, inFlight, responseSize)

	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerInFlight(inFlight,
			promhttp.InstrumentHandlerDuration(duration,
				promhttp.InstrumentHandlerCounter(counter,
					promhttp.InstrumentHandlerResponseSize(responseSize, next),
				)))
	}
}
