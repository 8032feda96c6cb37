package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// NotificationEvent is an outbox row written by the connection engine after
// its transaction commits. The dispatch worker drains unpublished rows;
// duplicates are tolerated, loss is not.
type NotificationEvent struct {
	ID            snowflake.ID   `gorm:"primaryKey" json:"id"`
	EventType     string         `gorm:"not null;index" json:"event_type"`
	RecipientID   snowflake.ID   `gorm:"not null;index" json:"recipient_id"`
	Payload       datatypes.JSON `gorm:"not null" json:"payload"`
	CorrelationID string         `gorm:"not null" json:"correlation_id"`
	Published     bool           `gorm:"not null;default:false;index" json:"published"`
	Attempts      int            `gorm:"not null;default:0" json:"attempts"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
}

func (NotificationEvent) TableName() string {
	return "notification_events"
}

// Notification is the in-app row backing the unread badge and the
// notification list.
type Notification struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	EventType string       `gorm:"not null" json:"event_type"`
	Title     string       `gorm:"not null" json:"title"`
	Body      string       `gorm:"not null" json:"body"`
	Read      bool         `gorm:"column:is_read;not null;default:false;index" json:"read"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ReadAt    *time.Time   `json:"read_at,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
