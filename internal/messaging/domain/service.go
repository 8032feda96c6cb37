package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
)

var (
	ErrNotMatched  = errors.New("not_matched")
	ErrEmptyBody   = errors.New("empty_body")
	ErrBodyTooLong = errors.New("body_too_long")
)

const maxBodyLength = 4000

// MaxBodyLength bounds one message body, counted in runes.
func MaxBodyLength() int { return maxBodyLength }

type ListMessagesRequest struct {
	ActorID     snowflake.ID
	OtherUserID snowflake.ID
	PageToken   string
	PageSize    int
}

type ListMessagesResponse struct {
	pagination.PageInfo
	Messages []Message `json:"messages"`
}

type Service interface {
	// SendMessage delivers a message inside a matched pair's conversation.
	SendMessage(ctx context.Context, actorID, otherUserID snowflake.ID, body string) (*Message, error)

	// ListMessages returns the conversation newest-first and marks the
	// returned messages addressed to the actor as read.
	ListMessages(ctx context.Context, req ListMessagesRequest) (ListMessagesResponse, error)

	// UnreadCount reports unread messages across all of the actor's
	// conversations.
	UnreadCount(ctx context.Context, actorID snowflake.ID) (int64, error)
}
