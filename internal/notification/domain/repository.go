package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// FetchUnpublished returns the oldest unpublished outbox rows.
	FetchUnpublished(ctx context.Context, db *gorm.DB, limit int) ([]*NotificationEvent, error)
	MarkPublished(ctx context.Context, db *gorm.DB, id snowflake.ID, publishedAt time.Time) error
	IncrementAttempts(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertNotification(ctx context.Context, db *gorm.DB, notification *Notification) error
	CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID snowflake.ID, readAt time.Time) (bool, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID, readAt time.Time) error
}
