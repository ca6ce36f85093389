package domain

import "context"

type NotificationStore interface {
	ListActive(ctx context.Context, bookingId string) ([]*Notification, error)
	Create(ctx context.Context, notification *Notification) (*Notification, error)
	MarkRead(ctx context.Context, notificationId string) error
	Dismiss(ctx context.Context, notificationId string) error
}
