package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TopicInvitationReceived = "invitation.received"
	TopicInvitationAccepted = "invitation.accepted"
	TopicInvitationDeclined = "invitation.declined"
)

// InvitationPayload is the outbox payload shared with the notification
// dispatcher.
type InvitationPayload struct {
	InvitationID    string `json:"invitation_id"`
	FromUserID      string `json:"from_user_id"`
	ToUserID        string `json:"to_user_id"`
	FromDisplayName string `json:"from_display_name"`
	Date            string `json:"date"`
}

type Publisher interface {
	Publish(ctx context.Context, topic string, recipientID snowflake.ID, payload InvitationPayload) error
}

// outboxPublisher writes events to the notification_events table in its own
// short transaction. The dispatch worker drains the table asynchronously.
type outboxPublisher struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutboxPublisher(db *gorm.DB, genID *snowflake.Node) Publisher {
	return &outboxPublisher{
		db:    db,
		genID: genID,
	}
}

func (p *outboxPublisher) Publish(ctx context.Context, topic string, recipientID snowflake.ID, payload InvitationPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return p.db.WithContext(ctx).Exec(
		`INSERT INTO notification_events (id, event_type, recipient_id, payload, correlation_id, published, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, false, 0, ?)`,
		p.genID.Generate(),
		topic,
		recipientID,
		datatypes.JSON(raw),
		ulid.Make().String(),
		now,
	).Error
}
