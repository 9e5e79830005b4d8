// Package notification delivers event notifications to configured sinks.
package notification

import (
	"context"
	"time"
)

// NotifierType identifies a notifier implementation.
type NotifierType string

const (
	NotifierWebhook NotifierType = "webhook"
)

// SyncEvent summarizes a completed plugin sync run.
type SyncEvent struct {
	Plugin      string    `json:"plugin"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completedAt"`
}

// HealthEvent reports a plugin or upstream failure.
type HealthEvent struct {
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	OccuredAt time.Time `json:"occuredAt"`
}

// Notifier is implemented by every notification sink.
type Notifier interface {
	Type() NotifierType
	Name() string
	Test(ctx context.Context) error
	OnSyncComplete(ctx context.Context, event SyncEvent) error
	OnHealthIssue(ctx context.Context, event HealthEvent) error
}
