package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	AppointmentTransitions *prometheus.CounterVec
	AssistantRequests      *prometheus.CounterVec
	AmbulanceBookings      prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewCollector registers every metric on a fresh registry.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		AppointmentTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "appointment_transitions_total",
			Help:      "Appointment lifecycle events by resulting status.",
		}, []string{"status"}),

		AssistantRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "requests_total",
			Help:      "Chat assistant requests by outcome.",
		}, []string{"outcome"}),

		AmbulanceBookings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "emergency",
			Name:      "ambulance_bookings_total",
			Help:      "Total ambulance bookings requested.",
		}),

		gatherer: reg,
	}
}

// Handler exposes the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// The recorders below accept a nil Collector so services can run without one.

func (c *Collector) ObserveTransition(status string) {
	if c == nil {
		return
	}
	c.AppointmentTransitions.WithLabelValues(status).Inc()
}

func (c *Collector) ObserveAssistant(outcome string) {
	if c == nil {
		return
	}
	c.AssistantRequests.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveAmbulanceBooking() {
	if c == nil {
		return
	}
	c.AmbulanceBookings.Inc()
}
