package domain

import "time"

// Notification is the single persisted entity. The durable copy in DynamoDB is
// authoritative; anything pushed over a socket or returned to a caller is a snapshot.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	UserID         string    `json:"userId" dynamodbav:"user_id"`
	Read           bool      `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// CreateNotificationRequest carries the caller-supplied fields for a new notification.
// UserID is the routing address; it is an opaque string and is never checked against
// any identity authority.
type CreateNotificationRequest struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}
