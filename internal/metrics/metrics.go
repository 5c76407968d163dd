package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transfers

	SubmissionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_submissions_sent_total",
			Help: "Total number of outbound submissions",
		},
		[]string{"chain_to", "kind"},
	)

	SubmissionsClaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_submissions_claimed_total",
			Help: "Total number of inbound submissions claimed",
		},
		[]string{"chain_from", "mode"},
	)

	ProtocolErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_protocol_errors_total",
			Help: "Protocol operations rejected, by category and code",
		},
		[]string{"operation", "category", "code"},
	)

	ConfirmationsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gate_confirmations_recorded_total",
		Help: "Distinct oracle confirmations stored",
	})

	FlashLoans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_flash_loans_total",
			Help: "Flash loans by outcome",
		},
		[]string{"outcome"},
	)

	// Orders

	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_order_transitions_total",
			Help: "Order take-state transitions",
		},
		[]string{"status"},
	)

	// Relay

	OutboxRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_outbox_relayed_total",
			Help: "Outbox messages published to NATS",
		},
		[]string{"kind"},
	)

	OutboxFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_outbox_failures_total",
			Help: "Outbox publish attempts that failed",
		},
		[]string{"kind"},
	)

	OutboxPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gate_outbox_pending",
		Help: "Pending outbox messages seen by the last relay tick",
	})

	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gate_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	// HTTP

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
