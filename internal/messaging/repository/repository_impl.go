package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/messaging/domain"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, message *domain.Message) error {
	return db.WithContext(ctx).Create(message).Error
}

func (r *repo) ListByPair(ctx context.Context, db *gorm.DB, pairKey string, page pagination.Pagination) ([]*domain.Message, error) {
	var messages []*domain.Message
	stmt := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("pair_key = ?", pairKey)
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repo) CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *repo) MarkPairRead(ctx context.Context, db *gorm.DB, pairKey string, recipientID snowflake.ID, readAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("pair_key = ? AND recipient_id = ? AND is_read = ?", pairKey, recipientID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": readAt,
		}).Error
}
