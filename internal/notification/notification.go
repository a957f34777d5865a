// Package notification delivers user-facing messages about wallet activity.
// Delivery is at-most-once: a failed dispatch is logged and dropped, never
// retried, so notification trouble can never block settlement.
package notification

import (
	"context"

	"go.uber.org/zap"
)

// Sender pushes one message to a delivery channel (push, email, SMS).
type Sender interface {
	Send(ctx context.Context, userID uint, title, body string) error
}

// Service fans a notification out to every configured sender.
type Service struct {
	senders []Sender
	logger  *zap.Logger
}

// NewService creates a dispatch service. With no senders it degrades to
// logging only, which is the right behavior for local development.
func NewService(logger *zap.Logger, senders ...Sender) *Service {
	return &Service{senders: senders, logger: logger}
}

// Dispatch delivers the message to all senders, best effort.
func (s *Service) Dispatch(ctx context.Context, userID uint, title, body string) {
	s.logger.Info("notification dispatched",
		zap.Uint("user_id", userID),
		zap.String("title", title))
	for _, snd := range s.senders {
		if err := snd.Send(ctx, userID, title, body); err != nil {
			s.logger.Warn("notification delivery failed",
				zap.Uint("user_id", userID),
				zap.String("title", title),
				zap.Error(err))
		}
	}
}
