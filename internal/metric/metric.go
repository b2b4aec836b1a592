// Package metric exposes prometheus instrumentation for the HTTP layer and
// the storage core.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boda_http_requests_total",
		Help: "HTTP requests handled, by method and status code.",
	}, []string{"method", "status"})

	// RSVPConflicts counts optimistic-concurrency collisions during RSVP
	// updates, including the ones resolved by the internal retry.
	RSVPConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boda_rsvp_conflicts_total",
		Help: "RSVP updates that hit a concurrent writer.",
	})

	// DualWriteFailures counts swallowed legacy shadow-write errors. A nonzero
	// rate means the legacy key is drifting from the entity records.
	DualWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boda_dual_write_failures_total",
		Help: "Best-effort legacy shadow writes that failed.",
	})

	// StoreOps counts guest-record store operations by name.
	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boda_store_ops_total",
		Help: "Guest record store operations.",
	}, []string{"op"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
