package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		FilterNotificationsByUserID(ctx context.Context, userID int) ([]Notification, error)
		// MarkNotificationRead sets read=true. Idempotent: marking an already
		// read notification is a no-op, not an error.
		MarkNotificationRead(ctx context.Context, id int) (Notification, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, userID int, message string) (Notification, error) {
	notif := Notification{
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateNotification(ctx, notif)
}

func (svc *Service) ForUser(ctx context.Context, userID int) ([]Notification, error) {
	return svc.repo.FilterNotificationsByUserID(ctx, userID)
}

func (svc *Service) MarkRead(ctx context.Context, id int) (Notification, error) {
	return svc.repo.MarkNotificationRead(ctx, id)
}
