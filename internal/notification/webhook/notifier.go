// Package webhook sends notification events to a configurable HTTP
// endpoint as JSON.
package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bridgearr/bridgearr/internal/notification"
)

// Settings contains webhook-specific configuration
type Settings struct {
	URL      string            `json:"url"`
	Method   string            `json:"method,omitempty"`
	Username string            `json:"username,omitempty"`
	Password string            `json:"password,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Payload is the JSON body sent for every event.
type Payload struct {
	EventType    string    `json:"eventType"`
	InstanceName string    `json:"instanceName"`
	Plugin       string    `json:"plugin,omitempty"`
	Title        string    `json:"title,omitempty"`
	Message      string    `json:"message,omitempty"`
	Source       string    `json:"source,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Notifier sends notifications to a custom webhook endpoint
type Notifier struct {
	name       string
	settings   Settings
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new webhook notifier
func New(name string, settings Settings, httpClient *http.Client, logger zerolog.Logger) *Notifier {
	if settings.Method == "" {
		settings.Method = "POST"
	}
	return &Notifier{
		name:       name,
		settings:   settings,
		httpClient: httpClient,
		logger:     logger.With().Str("notifier", "webhook").Str("name", name).Logger(),
	}
}

func (n *Notifier) Type() notification.NotifierType {
	return notification.NotifierWebhook
}

func (n *Notifier) Name() string {
	return n.name
}

func (n *Notifier) Test(ctx context.Context) error {
	payload := Payload{
		EventType:    "test",
		InstanceName: "bridgearr",
		Message:      "Test notification from bridgearr",
		Timestamp:    time.Now().UTC(),
	}
	return n.send(ctx, payload)
}

func (n *Notifier) OnSyncComplete(ctx context.Context, event notification.SyncEvent) error {
	payload := Payload{
		EventType:    "syncComplete",
		InstanceName: "bridgearr",
		Plugin:       event.Plugin,
		Title:        event.Title,
		Message:      event.Message,
		Timestamp:    event.CompletedAt,
	}
	return n.send(ctx, payload)
}

func (n *Notifier) OnHealthIssue(ctx context.Context, event notification.HealthEvent) error {
	payload := Payload{
		EventType:    "healthIssue",
		InstanceName: "bridgearr",
		Source:       event.Source,
		Message:      event.Message,
		Timestamp:    event.OccuredAt,
	}
	return n.send(ctx, payload)
}

func (n *Notifier) send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, n.settings.Method, n.settings.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if n.settings.Username != "" && n.settings.Password != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(n.settings.Username + ":" + n.settings.Password))
		req.Header.Set("Authorization", "Basic "+auth)
	}

	for key, value := range n.settings.Headers {
		req.Header.Set(key, value)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
