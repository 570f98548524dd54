package inmemdb

import (
	"context"
	"sort"

	"github.com/raresamza/mythesis/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.notificationPK++
	notif.ID = repo.db.notificationPK
	notif.Read = false
	repo.db.notifications[notif.ID] = &notif
	return notif, nil
}

func (repo *notificationRepository) FilterNotificationsByUserID(_ context.Context, userID int) ([]notification.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	notifs := make([]notification.Notification, 0, len(repo.db.notifications))
	for _, notif := range repo.db.notifications {
		if notif.UserID == userID {
			notifs = append(notifs, *notif)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].ID < notifs[j].ID })
	return notifs, nil
}

func (repo *notificationRepository) MarkNotificationRead(_ context.Context, id int) (notification.Notification, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	notif, ok := repo.db.notifications[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	notif.Read = true
	return *notif, nil
}
