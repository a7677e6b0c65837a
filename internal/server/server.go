// Package server exposes the assistant over HTTP: a synchronous chat
// endpoint, an SSE streaming endpoint and a readiness probe.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/suimate-ai/server/internal/agent/model"
	logx "github.com/suimate-ai/server/pkg/logger"
)

type Config struct {
	Addr            string `envconfig:"SERVER_ADDR" default:":8080"`
	ReadTimeout     int    `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	ShutdownTimeout int    `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10"`
}

// Assistant is the orchestrator surface the transport needs; implemented by
// graph.Assistant and by stubs in tests.
type Assistant interface {
	Invoke(ctx context.Context, in model.ChatInput) (string, error)
	Stream(ctx context.Context, in model.ChatInput) (*schema.StreamReader[*schema.Message], error)
	CompleteTurn(ctx context.Context, sessionID, content string) error
	IsConfigured() bool
}

type Server struct {
	cfg       Config
	assistant Assistant
}

func New(cfg Config, assistant Assistant) *Server {
	return &Server{cfg: cfg, assistant: assistant}
}

type chatRequest struct {
	SessionID     string `json:"session_id"`
	Message       string `json:"message"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type chatResponse struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("POST /v1/chat/stream", s.handleChatStream)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
// WriteTimeout stays unset: SSE streams are long-lived by design.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.Handler(),
		ReadTimeout: time.Duration(s.cfg.ReadTimeout) * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeout)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok", "model_configured": s.assistant.IsConfigured()}
	if !s.assistant.IsConfigured() {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	content, err := s.assistant.Invoke(r.Context(), model.ChatInput{
		SessionID:     req.SessionID,
		Message:       req.Message,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		logx.Error().Err(err).Str("session_id", req.SessionID).Msg("Chat turn failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "the assistant could not complete this turn"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:   content,
		Type:      "text",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ew, ok := newEventWriter(w)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	// start goes out before any model token or tool call so the client can
	// show an in-progress indicator immediately.
	if err := ew.send(StreamEvent{Type: EventStart}); err != nil {
		return
	}

	ctx := r.Context()
	reader, err := s.assistant.Stream(ctx, model.ChatInput{
		SessionID:     req.SessionID,
		Message:       req.Message,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		logx.Error().Err(err).Str("session_id", req.SessionID).Msg("Failed to start stream")
		ew.send(StreamEvent{Type: EventError, Message: "the assistant could not start this turn"})
		return
	}
	defer reader.Close()

	var full strings.Builder
	for {
		msg, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				// Client gone; stop producing, nothing left to tell it.
				logx.Debug().Str("session_id", req.SessionID).Msg("Client disconnected mid-stream")
				return
			}
			logx.Error().Err(err).Str("session_id", req.SessionID).Msg("Stream failed mid-turn")
			ew.send(StreamEvent{Type: EventError, Message: "the assistant was interrupted mid-response"})
			return
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		full.WriteString(msg.Content)
		if err := ew.send(StreamEvent{Type: EventToken, Content: msg.Content}); err != nil {
			return
		}
	}

	if err := s.assistant.CompleteTurn(ctx, req.SessionID, full.String()); err != nil {
		logx.Error().Err(err).Str("session_id", req.SessionID).Msg("Failed to save streamed turn")
	}

	ew.send(StreamEvent{Type: EventEnd})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return req, false
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message must not be empty"})
		return req, false
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id must not be empty"})
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("Failed to encode response")
	}
}
