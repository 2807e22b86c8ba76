package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "workouts",
		Name:      "recorded_total",
		Help:      "Workouts created from a validated form submission.",
	}, []string{"kind"})
	validationRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "form",
		Name:      "rejections_total",
		Help:      "Form submissions rejected by validation.",
	})
	persistenceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "store",
		Name:      "persistence_failures_total",
		Help:      "Failed reads or writes of the persisted workout blob.",
	}, []string{"op"})
	geolocationOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "geolocation",
		Name:      "outcomes_total",
		Help:      "Position acquisitions by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(workoutsRecorded, validationRejections, persistenceFailures, geolocationOutcomes)
}

func RecordWorkout(kind string) {
	workoutsRecorded.WithLabelValues(kind).Inc()
}

func RecordRejection() {
	validationRejections.Inc()
}

// RecordPersistenceFailure counts a failed blob operation; op is "load", "save" or "reset".
func RecordPersistenceFailure(op string) {
	persistenceFailures.WithLabelValues(op).Inc()
}

// Geolocation outcome labels.
const (
	GeolocationSuccess  = "success"
	GeolocationFailed   = "failed"
	GeolocationTimeout  = "timeout"
	GeolocationCanceled = "canceled"
)

// RecordGeolocation counts an acquisition outcome, one of the Geolocation* labels.
func RecordGeolocation(outcome string) {
	geolocationOutcomes.WithLabelValues(outcome).Inc()
}
