package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/MeKo-Tech/taggo/internal/export"
	"github.com/MeKo-Tech/taggo/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// tagHandler scores a single uploaded image.
func (s *Server) tagHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeError(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	pred, err := s.classifier.Tag(r.Context(), img, s.requestThreshold(r))
	if err != nil {
		tagRequestsTotal.WithLabelValues("image", "error").Inc()
		s.writeError(w, fmt.Sprintf("Tagging failed: %v", err), http.StatusInternalServerError)
		return
	}

	tagRequestsTotal.WithLabelValues("image", "success").Inc()
	tagProcessingDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	tagsPerImage.Observe(float64(len(pred.Tags)))

	writeJSON(w, http.StatusOK, TagResponse{
		Success: true,
		Tags:    pred.Tags,
		Scores:  pred.Scores,
	})
}

// batchURLsHandler runs the batch pipeline over a JSON list of URLs.
// format=csv returns the CSV rendering instead of JSON.
func (s *Server) batchURLsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var req BatchURLsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(req.URLs) == 0 {
		s.writeError(w, "No URLs provided", http.StatusBadRequest)
		return
	}

	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		s.writeError(w, "Threshold must be between 0 and 1", http.StatusBadRequest)
		return
	}

	results := s.runner.ProcessURLs(r.Context(), req.URLs, threshold, nil)

	tagRequestsTotal.WithLabelValues("batch", "success").Inc()
	tagProcessingDuration.WithLabelValues("batch").Observe(time.Since(start).Seconds())

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		if err := export.WriteCSV(w, results); err != nil {
			slog.Error("writing csv response", "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, BatchResponse{
		Success:   true,
		Results:   results,
		Succeeded: results.Succeeded(),
		Failed:    results.Failed(),
	})
}

// requestThreshold reads the threshold query or form parameter, falling back
// to the server default.
func (s *Server) requestThreshold(r *http.Request) float64 {
	raw := r.FormValue("threshold")
	if raw == "" {
		raw = r.URL.Query().Get("threshold")
	}
	if raw == "" {
		return s.threshold
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return s.threshold
	}
	return v
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
