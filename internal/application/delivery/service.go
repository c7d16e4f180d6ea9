package delivery

import (
	"context"
	"log/slog"

	notificationapp "github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/domain"
)

// eventNotification is the channel event name carried by every push; it is
// the wire name clients subscribe to (realtime.EventNotification).
const eventNotification = "notification"

// Broadcaster pushes an event to every live connection registered under an
// address. Implementations must not block on slow members.
type Broadcaster interface {
	Broadcast(userID, event string, payload interface{})
}

// Publisher mirrors persisted notifications to an external sink, best effort.
type Publisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// Service is the delivery router: persist first, fan out second. Persistence is
// guaranteed or the call fails; the push to live members is at-most-once with no
// acknowledgement and no queuing for offline recipients.
type Service interface {
	Send(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error)
}

type service struct {
	notifications notificationapp.Service
	broadcaster   Broadcaster
	publisher     Publisher // nil when no external mirror is configured
}

func NewService(notifications notificationapp.Service, broadcaster Broadcaster, publisher Publisher) Service {
	return &service{notifications: notifications, broadcaster: broadcaster, publisher: publisher}
}

// Send routes a notification to an address. A store failure aborts the call
// before any fan-out; a successful store always succeeds even if the address
// has zero live members — the record stays retrievable via ListByUser.
func (s *service) Send(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	n, err := s.notifications.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(n.UserID, eventNotification, n)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n); err != nil {
			slog.Error("sns mirror failed", "notification_id", n.NotificationID, "err", err)
		}
	}
	return n, nil
}
