package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event names sent by the streaming chat endpoint
const (
	eventDelta   = "delta"
	eventMessage = "message"
	eventError   = "error"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteDelta sends one text fragment
func (s *SSEWriter) WriteDelta(text string) error {
	return s.WriteEvent(eventDelta, map[string]string{"text": text})
}

// WriteError sends a classified error event
func (s *SSEWriter) WriteError(e apiError) {
	s.WriteEvent(eventError, map[string]string{"error": e.Kind, "message": e.Message}) //nolint:errcheck
}
