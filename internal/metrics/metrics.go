package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AssistantTurns.
const (
	OutcomeReady     = "ready"
	OutcomePending   = "pending"
	OutcomeDegraded  = "degraded"
	OutcomeTransport = "transport_error"
)

var (
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roombooking_bookings_created_total",
			Help: "Total number of bookings created",
		},
	)

	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roombooking_bookings_rejected_total",
			Help: "Total number of booking requests rejected, by reason",
		},
		[]string{"reason"},
	)

	BookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roombooking_bookings_cancelled_total",
			Help: "Total number of bookings cancelled",
		},
	)

	AssistantTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roombooking_assistant_turns_total",
			Help: "Total number of assistant turns, by outcome",
		},
		[]string{"outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roombooking_llm_request_duration_seconds",
			Help:    "Duration of language model requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "status"},
	)
)
