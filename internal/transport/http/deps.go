package http

import (
	"context"

	"github.com/go-notify-api/internal/domain"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	"github.com/go-notify-api/internal/infrastructure/sns"
)

// NotificationRepository is the minimal interface the router requires from the
// notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
	// ListByUser returns the user's notifications newest-created-first via the
	// user_id-created_at GSI; this is never a full table scan.
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID string) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	NotificationRepo NotificationRepository
	Publisher        sns.Publisher      // nil disables the external mirror
	JWTProvider      *jwtinfra.Provider // nil keeps register in client-declared mode
}
