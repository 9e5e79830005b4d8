package notification

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Service fans events out to every registered notifier. Delivery failures
// are logged and never propagated to the caller; a broken webhook must not
// fail a sync run.
type Service struct {
	logger zerolog.Logger

	mu        sync.RWMutex
	notifiers []Notifier
}

// NewService creates a notification service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		logger: logger.With().Str("component", "notification").Logger(),
	}
}

// Register adds a notifier to the fan-out set.
func (s *Service) Register(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiers = append(s.notifiers, n)
	s.logger.Info().Str("type", string(n.Type())).Str("name", n.Name()).Msg("Registered notifier")
}

// NotifySyncComplete delivers a sync summary to all notifiers.
func (s *Service) NotifySyncComplete(ctx context.Context, event SyncEvent) {
	s.mu.RLock()
	notifiers := append([]Notifier(nil), s.notifiers...)
	s.mu.RUnlock()

	for _, n := range notifiers {
		if err := n.OnSyncComplete(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("notifier", n.Name()).Msg("Sync notification failed")
		}
	}
}

// NotifyHealthIssue delivers a health event to all notifiers.
func (s *Service) NotifyHealthIssue(ctx context.Context, event HealthEvent) {
	s.mu.RLock()
	notifiers := append([]Notifier(nil), s.notifiers...)
	s.mu.RUnlock()

	for _, n := range notifiers {
		if err := n.OnHealthIssue(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("notifier", n.Name()).Msg("Health notification failed")
		}
	}
}
