// Package metrics exposes Prometheus collectors for the partner gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PartnerRequestsTotal tracks outbound partner calls by outcome.
	PartnerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinegate",
			Subsystem: "partner",
			Name:      "requests_total",
			Help:      "Total number of outbound partner requests",
		},
		[]string{"partner", "op", "outcome"},
	)

	// PartnerRequestDuration tracks outbound partner call duration.
	PartnerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dinegate",
			Subsystem: "partner",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound partner requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"partner", "op"},
	)

	// AggregatorPartnersDropped counts partners whose failures the aggregator
	// swallowed into an empty contribution.
	AggregatorPartnersDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinegate",
			Subsystem: "aggregator",
			Name:      "partners_dropped_total",
			Help:      "Partner listings dropped from aggregation due to failure",
		},
		[]string{"partner", "kind"},
	)

	// BookingsTotal tracks orchestrated bookings by final local status.
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinegate",
			Subsystem: "booking",
			Name:      "total",
			Help:      "Total number of orchestrated partner bookings",
		},
		[]string{"service_type", "outcome"},
	)

	// PartnerHealthy reports the last health probe result per partner.
	PartnerHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dinegate",
			Subsystem: "partner",
			Name:      "healthy",
			Help:      "Whether the last health probe of a partner succeeded (1/0)",
		},
		[]string{"partner"},
	)
)
