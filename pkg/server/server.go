// Copyright 2024-2026 Aiku AI

// Package server exposes the inbound HTTP surface of the relay: the
// capability-URL webhook endpoint, optional direct Matrix room delivery,
// and the URL-encoder web form.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aiku/slack-to-matrix/pkg/relay"
	"github.com/aiku/slack-to-matrix/pkg/translator"
)

// ackBody is the fixed acknowledgement returned to the original caller
// after a successful relay.
const ackBody = "ok"

//go:embed form.html
var encoderForm []byte

// Server is the inbound HTTP server. It owns the router and the outbound
// senders; all translation state is per-request.
type Server struct {
	cfg  *Config
	log  zerolog.Logger
	http *http.Server

	webhook *relay.WebhookSender
	matrix  *relay.MatrixSender // nil unless homeserver credentials are configured
}

// New builds the server and its routes from the given config.
func New(cfg *Config, log zerolog.Logger) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		log:     log.With().Str("component", "server").Logger(),
		webhook: relay.NewWebhookSender(time.Duration(cfg.RelayTimeoutSeconds)*time.Second, log),
	}
	if cfg.Matrix.HomeserverURL != "" && cfg.Matrix.AccessToken != "" {
		var err error
		s.matrix, err = relay.NewMatrixSender(cfg.Matrix.HomeserverURL, cfg.Matrix.AccessToken, cfg.DefaultUsername, log)
		if err != nil {
			return nil, fmt.Errorf("failed to set up matrix delivery: %w", err)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleForm)
	r.Get("/health", s.handleHealth)
	r.Post("/hook/{target}", s.handleHook)
	r.Post("/room/{roomID}", s.handleRoom)

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start runs the HTTP server until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.cfg.ListenAddr).
		Bool("matrix_delivery", s.matrix != nil).
		Msg("Starting webhook relay")
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(encoderForm)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleHook relays a Slack payload to the webhook URL encoded in the
// capability path segment.
func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(r)

	target, err := DecodeMatrixURL(chi.URLParam(r, "target"))
	if err != nil {
		log.Warn().Err(err).Msg("Rejected hook request with bad target")
		http.Error(w, "invalid target", http.StatusBadRequest)
		return
	}

	payload, err := s.readPayload(w, r)
	if err != nil {
		s.writePayloadError(w, log, err)
		return
	}

	msg := translator.Translate(payload)
	if err := s.webhook.Send(r.Context(), target, msg); err != nil {
		s.writeRelayError(w, log, err)
		return
	}

	log.Debug().
		Int("blocks", len(payload.Blocks)).
		Int("attachments", len(payload.Attachments)).
		Msg("Relayed payload")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, ackBody)
}

// handleRoom delivers a Slack payload straight to a Matrix room. Only
// available when the config carries homeserver credentials.
func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(r)

	if s.matrix == nil {
		http.Error(w, "matrix delivery is not configured", http.StatusNotImplemented)
		return
	}
	roomID := chi.URLParam(r, "roomID")
	if !strings.HasPrefix(roomID, "!") {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	payload, err := s.readPayload(w, r)
	if err != nil {
		s.writePayloadError(w, log, err)
		return
	}

	msg := translator.Translate(payload)
	if err := s.matrix.Send(r.Context(), roomID, msg); err != nil {
		s.writeRelayError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, ackBody)
}

// readPayload decodes the request body leniently: an empty body is a
// valid empty payload, and unknown fields are ignored.
func (s *Server) readPayload(w http.ResponseWriter, r *http.Request) (*translator.Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	var payload translator.Payload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
	}
	return &payload, nil
}

// writePayloadError distinguishes an oversized body from undecodable
// JSON so senders get an accurate verdict.
func (s *Server) writePayloadError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		log.Warn().Err(err).Msg("Rejected oversized payload")
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	log.Warn().Err(err).Msg("Rejected undecodable payload")
	http.Error(w, "invalid JSON payload", http.StatusBadRequest)
}

// writeRelayError maps delivery failures to responses: the destination's
// own HTTP verdict passes through unchanged, transport failures become a
// gateway error.
func (s *Server) writeRelayError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var statusErr *relay.StatusError
	if errors.As(err, &statusErr) {
		w.WriteHeader(statusErr.Code)
		_, _ = io.WriteString(w, statusErr.Body)
		return
	}
	log.Error().Err(err).Msg("Failed to reach destination")
	http.Error(w, "failed to reach destination", http.StatusBadGateway)
}

func (s *Server) requestLog(r *http.Request) zerolog.Logger {
	return s.log.With().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("remote_addr", r.RemoteAddr).
		Logger()
}
