package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/pkg/id"
	"github.com/go-notify-api/internal/pkg/validate"
)

// Service is the single source of truth for notification state. Both gateway
// paths (websocket and REST) call the same instance.
type Service interface {
	Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID string) error // hard delete
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID string) error
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

// Create validates the request, assigns the id and creation time and persists.
// Validation failures never reach the store.
func (s *service) Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	n := &domain.Notification{
		NotificationID: id.New(),
		Title:          req.Title,
		Message:        req.Message,
		UserID:         req.UserID,
		Read:           false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListByUser returns the user's notifications newest-first. No notifications is
// an empty slice, not an error.
func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing userId: %w", domain.ErrBadRequest)
	}
	return s.repo.ListByUser(ctx, userID)
}

// MarkRead is idempotent: marking an already-read notification succeeds and
// returns it unchanged. read only ever transitions false to true.
func (s *service) MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *service) Delete(ctx context.Context, notificationID string) error {
	return s.repo.Delete(ctx, notificationID)
}
