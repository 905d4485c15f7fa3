// Package metrics exposes Prometheus counters for the booking engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector of the service.
var Registry = prometheus.NewRegistry()

var (
	// ReservationsCreated counts reservations written, by initial status.
	ReservationsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tables",
		Name:      "reservations_created_total",
		Help:      "Reservations created, by initial status.",
	}, []string{"status"})

	// Conflicts counts booking and confirmation attempts that found no
	// free table.
	Conflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tables",
		Name:      "reservation_conflicts_total",
		Help:      "Booking attempts rejected because no table was free.",
	})

	// Transitions counts lifecycle transitions, by target status.
	Transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tables",
		Name:      "reservation_transitions_total",
		Help:      "Lifecycle transitions, by target status.",
	}, []string{"to"})

	// Expired counts reservations cancelled by the sweeper.
	Expired = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tables",
		Name:      "reservations_expired_total",
		Help:      "Reservations cancelled by maintenance sweeps, by kind (hold, pending).",
	}, []string{"kind"})
)

func init() {
	Registry.MustRegister(
		ReservationsCreated,
		Conflicts,
		Transitions,
		Expired,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
