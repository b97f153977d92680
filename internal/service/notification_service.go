package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/tours-service/internal/events"
	"github.com/spec-kit/tours-service/internal/mailer"
)

// NotificationService reacts to account events.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mailer.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender mailer.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserSignedUp, n.handleUserSignedUp)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.logEvent)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.logEvent)
	n.dispatcher.Subscribe(events.EventPasswordReset, n.logEvent)
}

func (n *NotificationService) handleUserSignedUp(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserSignedUpPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("UserSignedUp", zap.String("user_id", event.UserID))
	if n.mailer == nil {
		return nil
	}
	return n.mailer.Send(ctx, mailer.Email{
		To:      []string{payload.Email},
		Subject: "Welcome to the Natours Family!",
		Body:    fmt.Sprintf("Hi %s,\n\nWelcome aboard! We're glad to have you.\n", payload.Name),
	})
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.Any("payload", event.Payload))
	return nil
}
