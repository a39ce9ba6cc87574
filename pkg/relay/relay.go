// Copyright 2024-2026 Aiku AI

// Package relay delivers translated messages to their destination, either
// as a JSON POST to an arbitrary webhook URL or directly to a Matrix room.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiku/slack-to-matrix/pkg/translator"
)

// maxResponseSize caps how much of a destination's response body is kept
// for passthrough (64 KB).
const maxResponseSize = 64 << 10

// Sender delivers one translated message to a target. The meaning of the
// target string depends on the implementation: a webhook URL for
// WebhookSender, a room ID for MatrixSender.
type Sender interface {
	Send(ctx context.Context, target string, msg *translator.Message) error
}

// StatusError reports a non-2xx response from the destination so the
// inbound handler can pass the status and body through to the original
// caller unchanged.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("destination returned HTTP %d: %s", e.Code, e.Body)
}

// WebhookSender posts translated messages as JSON to caller-specified
// destination URLs. One fire-and-forget POST per message.
type WebhookSender struct {
	client *http.Client
	log    zerolog.Logger
}

var _ Sender = (*WebhookSender)(nil)

// NewWebhookSender creates a sender with the given per-request timeout.
func NewWebhookSender(timeout time.Duration, log zerolog.Logger) *WebhookSender {
	return &WebhookSender{
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "webhook_sender").Logger(),
	}
}

// Send posts the message to target. Non-2xx responses become a
// *StatusError carrying the destination's verdict; transport failures are
// returned as plain errors for the handler to map to a gateway error.
func (s *WebhookSender) Send(ctx context.Context, target string, msg *translator.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach destination: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn().
			Int("status", resp.StatusCode).
			Str("target", target).
			Msg("Destination rejected relayed message")
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	s.log.Debug().
		Int("status", resp.StatusCode).
		Int("body_bytes", len(body)).
		Msg("Relayed message to destination")
	return nil
}
