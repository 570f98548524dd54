package notification

import "time"

// Notification is a per-user in-app inbox entry, distinct from any email sent
// for the same event. Created unread; mutated only by marking it read.
type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"timestamp"` // UTC
}
