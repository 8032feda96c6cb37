package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Message is one direct message inside a matched pair's conversation. The
// conversation itself is implicit: it exists exactly when the pair has an
// accepted invitation.
type Message struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	PairKey     string       `gorm:"not null;index" json:"-"`
	SenderID    snowflake.ID `gorm:"not null;index" json:"sender_id"`
	RecipientID snowflake.ID `gorm:"not null;index" json:"recipient_id"`
	Body        string       `gorm:"not null" json:"body"`
	Read        bool         `gorm:"column:is_read;not null;default:false;index" json:"read"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ReadAt      *time.Time   `json:"read_at,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
