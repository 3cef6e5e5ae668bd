package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taggo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taggo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Tagging metrics
	tagRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taggo_tag_requests_total",
			Help: "Total number of tagging requests",
		},
		[]string{"type", "status"}, // type: image, batch, websocket
	)

	tagProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taggo_tag_processing_duration_seconds",
			Help:    "Tagging duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"type"},
	)

	tagsPerImage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taggo_tags_per_image",
			Help:    "Number of tags emitted per image",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taggo_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiting",
		},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taggo_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taggo_websocket_connections",
			Help: "Number of active WebSocket connections",
		},
	)
)
