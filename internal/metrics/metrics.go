package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	registryOpsTotal  *prometheus.CounterVec
	eventsJournaled   *prometheus.CounterVec
	eventsPublished   *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polling",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the polling API.",
		}, []string{"method", "path", "status"})

		registryOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polling",
			Name:      "registry_operations_total",
			Help:      "Registry mutations by operation and outcome.",
		}, []string{"op", "result"})

		eventsJournaled = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polling",
			Name:      "events_journaled_total",
			Help:      "Registry events written to the journal.",
		}, []string{"result"})

		eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polling",
			Name:      "events_published_total",
			Help:      "Registry events published to the event bus.",
		}, []string{"result"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncOperation counts one registry mutation. result is "ok" or the error code.
func IncOperation(op, result string) {
	if registryOpsTotal == nil {
		return
	}
	registryOpsTotal.WithLabelValues(op, result).Inc()
}

func IncJournaled(ok bool) {
	if eventsJournaled == nil {
		return
	}
	eventsJournaled.WithLabelValues(outcome(ok)).Inc()
}

func IncPublished(ok bool) {
	if eventsPublished == nil {
		return
	}
	eventsPublished.WithLabelValues(outcome(ok)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
