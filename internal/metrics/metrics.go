package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "airdash"

var (
	HTTPRequestLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "http_request_latency_seconds",
			Namespace: Namespace,
			Buckets:   prometheus.DefBuckets,
			Help:      "The latency of http requests in seconds.",
		},
		[]string{"method"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "http_requests_total",
			Namespace: Namespace,
			Help:      "The total number of http requests served.",
		},
		[]string{"method", "status"},
	)
)

var (
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:        "cache_hits_total",
		Namespace:   Namespace,
		ConstLabels: prometheus.Labels{"cache": "memory"},
		Help:        "The total number of series cache hits since the application started.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:        "cache_misses_total",
		Namespace:   Namespace,
		ConstLabels: prometheus.Labels{"cache": "memory"},
		Help:        "The total number of series cache misses since the application started.",
	})
)

var (
	DatasetReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "dataset_reloads_total",
			Namespace: Namespace,
			Help:      "The total number of dataset load attempts, by outcome.",
		},
		[]string{"status"},
	)

	DatasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name:      "dataset_rows",
		Namespace: Namespace,
		Help:      "The number of readings in the currently loaded dataset.",
	})
)
