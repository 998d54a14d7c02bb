package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stash_hits_total",
			Help: "Total number of reads that returned a value",
		},
	)

	misses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stash_misses_total",
			Help: "Total number of reads that returned absence, including expired polling windows",
		},
	)

	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stash_store_errors_total",
			Help: "Total number of contained store failures",
		},
		[]string{"op"}, // op: save, save_if_absent, get, delete, exists
	)

	pollRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stash_poll_rounds",
			Help:    "Number of store attempts per read",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	waitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stash_wait_seconds",
			Help:    "Wall-clock duration of reads, including backoff sleeps",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)
