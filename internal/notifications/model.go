package notifications

import (
	"errors"
	"time"
)

// Category groups notifications for the bell menu filters.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryPayment  Category = "payment"
	CategoryBudget   Category = "budget"
	CategorySystem   Category = "system"
)

// Notification is one entry in a user's bell menu.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Category  Category  `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RefKind   string    `json:"ref_kind,omitempty"`
	RefID     int64     `json:"ref_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound indicates the notification does not exist or belongs to
// someone else.
var ErrNotFound = errors.New("notifications: not found")
