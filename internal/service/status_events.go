package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// StatusEvent announces an application status change to downstream
// consumers (mail, notifications).
type StatusEvent struct {
	ApplicationID uint      `json:"application_id"`
	ScholarshipID uint      `json:"scholarship_id"`
	UserID        uint      `json:"user_id"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	ChangedBy     uint      `json:"changed_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// StatusEventPublisher publishes application status changes. Publishing is
// best effort: a failed publish never fails the originating write.
type StatusEventPublisher interface {
	PublishStatusChange(ctx context.Context, event StatusEvent)
}

// NatsStatusPublisher publishes status events to a NATS subject.
type NatsStatusPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNatsStatusPublisher constructs a NATS-backed publisher. A nil
// connection yields a publisher that drops events silently, which keeps
// wiring simple in environments without a broker.
func NewNatsStatusPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *NatsStatusPublisher {
	if subject == "" {
		subject = "iskolar.applications.status"
	}
	return &NatsStatusPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "status_events").Logger(),
	}
}

// PublishStatusChange serializes and publishes the event.
func (p *NatsStatusPublisher) PublishStatusChange(_ context.Context, event StatusEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode status event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Uint("application_id", event.ApplicationID).Msg("failed to publish status event")
		return
	}
}
