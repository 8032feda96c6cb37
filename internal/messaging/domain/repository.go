package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, message *Message) error
	ListByPair(ctx context.Context, db *gorm.DB, pairKey string, page pagination.Pagination) ([]*Message, error)
	CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	MarkPairRead(ctx context.Context, db *gorm.DB, pairKey string, recipientID snowflake.ID, readAt time.Time) error
}
