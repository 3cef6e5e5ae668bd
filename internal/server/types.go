// Package server exposes the tagging pipeline over HTTP: single-image
// uploads, URL batch runs, a WebSocket channel with live progress, and
// Prometheus metrics.
package server

import (
	"context"
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/MeKo-Tech/taggo/internal/batch"
	"github.com/MeKo-Tech/taggo/internal/tagger"
)

// classifierInterface is the subset of the tagger the server needs,
// extracted so tests can substitute a fake.
type classifierInterface interface {
	Tag(ctx context.Context, img image.Image, threshold float64) (tagger.Prediction, error)
	TagBatch(ctx context.Context, imgs []image.Image, threshold float64) ([]tagger.Prediction, error)
	Close() error
}

// Server handles tagging requests over HTTP and WebSocket.
type Server struct {
	classifier  classifierInterface
	runner      *batch.Runner
	maxUploadMB int64
	threshold   float64
	limiter     *rate.Limiter
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	MaxUploadMB int64
	Threshold   float64
	RateLimit   float64
	RateBurst   int
	Tagger      tagger.Config
	Batch       batch.Config
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// TagResponse is the reply to a single-image tag request.
type TagResponse struct {
	Success bool      `json:"success"`
	Tags    []string  `json:"tags,omitempty"`
	Scores  []float64 `json:"scores,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// BatchURLsRequest asks for a batch run over remote images.
type BatchURLsRequest struct {
	URLs      []string `json:"urls"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// BatchResponse carries the assembled result set of a batch run.
type BatchResponse struct {
	Success   bool            `json:"success"`
	Results   batch.ResultSet `json:"results,omitempty"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Error     string          `json:"error,omitempty"`
}

// ErrorResponse is the generic error reply.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewServer creates a server, loading the classifier from the configured
// model paths.
func NewServer(config Config) (*Server, error) {
	classifier, err := tagger.New(config.Tagger)
	if err != nil {
		return nil, err
	}
	return newServer(classifier, config), nil
}

func newServer(classifier classifierInterface, config Config) *Server {
	if config.MaxUploadMB <= 0 {
		config.MaxUploadMB = 50
	}
	if config.Threshold <= 0 {
		config.Threshold = 0.2
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 10
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 20
	}
	return &Server{
		classifier:  classifier,
		runner:      batch.NewRunner(classifier, config.Batch),
		maxUploadMB: config.MaxUploadMB,
		threshold:   config.Threshold,
		limiter:     rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
	}
}

// Close releases the classifier session.
func (s *Server) Close() error {
	if s.classifier != nil {
		return s.classifier.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.instrument(s.healthHandler))
	mux.HandleFunc("/tag", s.instrument(s.rateLimit(s.tagHandler)))
	mux.HandleFunc("/batch/urls", s.instrument(s.rateLimit(s.batchURLsHandler)))
	mux.HandleFunc("/ws/batch", s.batchWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
