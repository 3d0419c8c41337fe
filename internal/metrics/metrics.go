package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Logins = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "eventmetrix_logins_total", Help: "Total successful login or implicit-signup operations"},
	)
	Registrations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "eventmetrix_registrations_total", Help: "Total successful registrations"},
	)
	EventsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "eventmetrix_events_created_total", Help: "Total events created with synthesized metrics"},
	)
	StorageWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "eventmetrix_storage_write_failures_total", Help: "Total collection writes rejected by the store"},
	)
)

func Register() {
	prometheus.MustRegister(Logins, Registrations, EventsCreated, StorageWriteFailures)
}
