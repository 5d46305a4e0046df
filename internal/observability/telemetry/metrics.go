package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	ActiveTrips = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ptpay_active_trips",
		Help: "Number of trips currently in progress",
	})

	TripsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ptpay_trips_started_total",
		Help: "Total trips started",
	})

	PaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ptpay_payments_total",
		Help: "Total fare payments processed",
	}, []string{"method"})

	FareCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ptpay_fare_collected_total",
		Help: "Total fare amount collected",
	})

	SettlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ptpay_settlements_total",
		Help: "Total driver pending-balance settlements",
	})

	LocationUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ptpay_location_updates_total",
		Help: "Total device location updates ingested",
	})

	// Infrastructure metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ptpay_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ptpay_database_latency_seconds",
		Help:    "Database query latency",
		Buckets: prometheus.DefBuckets,
	})
)
