package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/connection/domain"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invitation *domain.Invitation) error {
	return db.WithContext(ctx).Create(invitation).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *repo) FindActiveByPair(ctx context.Context, db *gorm.DB, pairKey string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := db.WithContext(ctx).
		Where("pair_key = ? AND status <> ?", pairKey, domain.StatusDeclined).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *repo) LatestByPair(ctx context.Context, db *gorm.DB, pairKey string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := db.WithContext(ctx).
		Where("pair_key = ?", pairKey).
		Order("COALESCE(responded_at, created_at) DESC, id DESC").
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *repo) MarkResponded(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, respondedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":       status,
			"responded_at": respondedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) CountPendingTo(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("to_user_id = ? AND status = ?", userID, domain.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repo) ListPendingReceived(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*domain.Invitation, error) {
	return r.listPending(ctx, db, "to_user_id", userID, page)
}

func (r *repo) ListPendingSent(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*domain.Invitation, error) {
	return r.listPending(ctx, db, "from_user_id", userID, page)
}

func (r *repo) listPending(ctx context.Context, db *gorm.DB, column string, userID snowflake.ID, page pagination.Pagination) ([]*domain.Invitation, error) {
	var invitations []*domain.Invitation
	stmt := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where(column+" = ? AND status = ?", userID, domain.StatusPending)
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}
