package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the lifecycle state of an invitation. Pending is the only
// non-terminal state; accepted and declined never re-open.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// ConnectionStatus is the viewer-relative relationship between two users,
// derived from the most recent invitation between them.
type ConnectionStatus string

const (
	ConnectionSelf            ConnectionStatus = "self"
	ConnectionMatched         ConnectionStatus = "matched"
	ConnectionPendingSent     ConnectionStatus = "pending_sent"
	ConnectionPendingReceived ConnectionStatus = "pending_received"
	ConnectionDeclinedByMe    ConnectionStatus = "declined_by_me"
	ConnectionDeclinedByThem  ConnectionStatus = "declined_by_them"
	ConnectionNone            ConnectionStatus = "none"
)

// Invitation is one user's offer to share a holiday date with another.
// PairKey is the canonical unordered-pair slot: at most one non-declined
// invitation may exist per pair at any time, regardless of direction.
type Invitation struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	FromUserID  snowflake.ID `gorm:"not null;index" json:"from_user_id"`
	ToUserID    snowflake.ID `gorm:"not null;index" json:"to_user_id"`
	PairKey     string       `gorm:"not null;index" json:"-"`
	Date        string       `gorm:"not null" json:"date"`
	Status      Status       `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	RespondedAt *time.Time   `json:"responded_at,omitempty"`
}

func (Invitation) TableName() string {
	return "invitations"
}

// PairKeyFor returns the canonical "min:max" key for an unordered user pair.
// Both directions of the same pair map to the same key.
func PairKeyFor(a, b snowflake.ID) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
