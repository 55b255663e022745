package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/logfields"
)

const (
	brokenSuffix    = ".broken"
	completedSuffix = ".completed"
	connectTimeout  = 5 * time.Second
	flushTimeout    = 5 * time.Second
)

// NATSPublisher publishes JSON events with core NATS on
// <subject>.broken and <subject>.completed.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("codify-docs"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).Warning().Retryable().Build()
	}
	slog.Info("NATS publisher connected", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishBrokenLink publishes on <subject>.broken.
func (p *NATSPublisher) PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error {
	return p.publish(ctx, p.subject+brokenSuffix, event)
}

// PublishRunCompleted publishes on <subject>.completed and flushes so the
// summary is on the wire before a short-lived process exits.
func (p *NATSPublisher) PublishRunCompleted(ctx context.Context, event *RunCompletedEvent) error {
	if err := p.publish(ctx, p.subject+completedSuffix, event); err != nil {
		return err
	}
	// FlushWithContext rejects contexts without a deadline.
	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to flush NATS connection").Retryable().Build()
	}
	return nil
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal event").Build()
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to publish event").
			WithContext("subject", subject).Retryable().Build()
	}
	slog.Debug("Event published", "subject", subject, "bytes", len(data))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		slog.Warn("NATS drain failed", logfields.Error(err))
		p.conn.Close()
		return err
	}
	return nil
}
