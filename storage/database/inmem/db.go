// Package inmemdb is a map-backed stand-in for the persistence layer.
// It backs dev mode and the test suites. Ids are assigned on create and
// partial updates replace the provided fields wholesale.
package inmemdb

import (
	"sync"

	"github.com/raresamza/mythesis/core/notification"
	"github.com/raresamza/mythesis/core/thesis"
	"github.com/raresamza/mythesis/core/user"
)

type DB struct {
	mu sync.RWMutex

	users          map[int]*user.User
	requests       map[int]*thesis.Request
	notifications  map[int]*notification.Notification
	userPK         int
	requestPK      int
	notificationPK int
}

func NewDB() *DB {
	return &DB{
		users:         make(map[int]*user.User),
		requests:      make(map[int]*thesis.Request),
		notifications: make(map[int]*notification.Notification),
	}
}
