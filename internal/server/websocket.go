package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/taggo/internal/batch"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from arbitrary origins; the endpoint
		// carries no credentials.
		return true
	},
}

// wsRequest starts a batch run over the WebSocket.
type wsRequest struct {
	Type      string   `json:"type"` // "start" or "cancel"
	URLs      []string `json:"urls,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// wsMessage is a frame sent to the client.
type wsMessage struct {
	Type      string          `json:"type"` // "progress", "completed", "error"
	Done      int             `json:"done,omitempty"`
	Total     int             `json:"total,omitempty"`
	Results   batch.ResultSet `json:"results,omitempty"`
	Succeeded int             `json:"succeeded,omitempty"`
	Failed    int             `json:"failed,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// batchWebSocketHandler runs URL batches with live progress frames. The
// client may send a cancel message at any time; the run then returns the
// records completed so far.
func (s *Server) batchWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("websocket connection established", "remote_addr", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	var req wsRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeWS(conn, wsMessage{Type: "error", Error: "invalid request"})
		return
	}
	if req.Type != "start" || len(req.URLs) == 0 {
		s.writeWS(conn, wsMessage{Type: "error", Error: "expected a start message with urls"})
		return
	}

	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	// Watch for a cancel frame while the run is in flight.
	var cancelled atomic.Bool
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		_ = conn.SetReadDeadline(time.Time{})
		for {
			var msg wsRequest
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "cancel" {
				cancelled.Store(true)
				return
			}
		}
	}()

	progress := batch.WithCancelFlag(func(done, total int) bool {
		s.writeWS(conn, wsMessage{Type: "progress", Done: done, Total: total})
		return true
	}, &cancelled)

	start := time.Now()
	results := s.runner.ProcessURLs(context.Background(), req.URLs, threshold, progress)

	tagRequestsTotal.WithLabelValues("websocket", "success").Inc()
	tagProcessingDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())

	s.writeWS(conn, wsMessage{
		Type:      "completed",
		Results:   results,
		Succeeded: results.Succeeded(),
		Failed:    results.Failed(),
	})

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (s *Server) writeWS(conn *websocket.Conn, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling websocket message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("websocket write failed", "error", err)
	}
}
