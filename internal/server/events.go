package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stream event types. Per turn: exactly one start, zero or more tokens in
// emission order, then exactly one terminal event (end or error). Nothing
// follows the terminal event.
const (
	EventStart = "start"
	EventToken = "token"
	EventEnd   = "end"
	EventError = "error"
)

// StreamEvent is one frame on the SSE channel.
type StreamEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"` // token events
	Message string `json:"message,omitempty"` // error events
}

// eventWriter serializes StreamEvents as SSE data frames and flushes after
// every write so tokens reach the client immediately.
type eventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventWriter(w http.ResponseWriter) (*eventWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	return &eventWriter{w: w, flusher: flusher}, true
}

func (ew *eventWriter) send(ev StreamEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(ew.w, "data: %s\n\n", b); err != nil {
		return err
	}
	ew.flusher.Flush()
	return nil
}
