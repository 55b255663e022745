// Package events publishes link-check results for downstream consumers.
package events

import (
	"context"
	"time"
)

// BrokenLinkEvent describes one broken link found by a check run.
type BrokenLinkEvent struct {
	RunID     string    `json:"run_id"`
	Link      string    `json:"link"`
	Origin    string    `json:"origin"`         // nav, sidebar, logo, page or html
	Source    string    `json:"source"`         // config path or page file
	Text      string    `json:"text,omitempty"` // link label
	Status    int       `json:"status,omitempty"`
	Error     string    `json:"error"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// RunCompletedEvent summarises a finished check run.
type RunCompletedEvent struct {
	RunID      string    `json:"run_id"`
	Snapshot   string    `json:"snapshot"`
	Pages      int       `json:"pages"`
	Errors     int       `json:"errors"`
	Warnings   int       `json:"warnings"`
	Status     string    `json:"status"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher sends check events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error
	PublishRunCompleted(ctx context.Context, event *RunCompletedEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishBrokenLink(context.Context, *BrokenLinkEvent) error     { return nil }
func (NoopPublisher) PublishRunCompleted(context.Context, *RunCompletedEvent) error { return nil }
func (NoopPublisher) Close() error                                                  { return nil }
