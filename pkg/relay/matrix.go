// Copyright 2024-2026 Aiku AI

package relay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/aiku/slack-to-matrix/pkg/translator"
	"github.com/aiku/slack-to-matrix/pkg/translator/mrkdwn"
)

// MatrixSender posts translated messages straight to a Matrix room using
// an access token, for deployments that skip the webhook hop. The target
// passed to Send is the room ID.
type MatrixSender struct {
	client *mautrix.Client
	log    zerolog.Logger

	// defaultUsername is prefixed to messages whose payload carried no
	// username. Matrix rooms have no per-message sender override, so the
	// relay applies the default the webhook consumer would otherwise add.
	defaultUsername string
}

var _ Sender = (*MatrixSender)(nil)

// NewMatrixSender creates a sender for the given homeserver and token.
func NewMatrixSender(homeserverURL, accessToken, defaultUsername string, log zerolog.Logger) (*MatrixSender, error) {
	client, err := mautrix.NewClient(homeserverURL, "", accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create matrix client: %w", err)
	}
	return &MatrixSender{
		client:          client,
		log:             log.With().Str("component", "matrix_sender").Logger(),
		defaultUsername: defaultUsername,
	}, nil
}

// Send delivers the message to the given room as an m.room.message event,
// with the HTML rendering attached as the formatted body when present.
func (s *MatrixSender) Send(ctx context.Context, roomID string, msg *translator.Message) error {
	content := &event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    msg.Text,
	}
	if msg.HTML != "" {
		content.Format = event.FormatHTML
		content.FormattedBody = msg.HTML
	}

	username := msg.Username
	if username == "" {
		username = s.defaultUsername
	}
	if username != "" {
		content.Body = username + ": " + content.Body
		if content.FormattedBody != "" {
			content.FormattedBody = "<strong>" + mrkdwn.Escape(username) + ":</strong> " + content.FormattedBody
		}
	}

	resp, err := s.client.SendMessageEvent(ctx, id.RoomID(roomID), event.EventMessage, content)
	if err != nil {
		return fmt.Errorf("failed to send matrix event: %w", err)
	}
	s.log.Debug().
		Str("room_id", roomID).
		Str("event_id", resp.EventID.String()).
		Msg("Sent message to Matrix room")
	return nil
}
