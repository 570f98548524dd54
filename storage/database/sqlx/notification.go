package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core/notification"
)

const notificationColumns = "id, user_id, message, read, created_at"

type dbNotification struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Message   string    `db:"message"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

func (n dbNotification) toNotification() notification.Notification {
	return notification.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

type NotificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (repo *NotificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	var row dbNotification
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO notifications (user_id, message, read, created_at)
		VALUES ($1, $2, false, $3)
		RETURNING `+notificationColumns,
		notif.UserID, notif.Message, notif.CreatedAt)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return row.toNotification(), nil
}

func (repo *NotificationRepository) FilterNotificationsByUserID(ctx context.Context, userID int) ([]notification.Notification, error) {
	var rows []dbNotification
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT "+notificationColumns+" FROM notifications WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.toNotification())
	}
	return notifs, nil
}

func (repo *NotificationRepository) MarkNotificationRead(ctx context.Context, id int) (notification.Notification, error) {
	var row dbNotification
	err := repo.db.GetContext(ctx, &row,
		"UPDATE notifications SET read = true WHERE id = $1 RETURNING "+notificationColumns, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	return row.toNotification(), nil
}
