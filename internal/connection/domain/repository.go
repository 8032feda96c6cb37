package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invitation *Invitation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invitation, error)

	// FindActiveByPair returns the non-declined invitation occupying the
	// pair slot, or nil when the slot is free.
	FindActiveByPair(ctx context.Context, db *gorm.DB, pairKey string) (*Invitation, error)

	// LatestByPair returns the invitation whose last transition is most
	// recent, or nil when the pair has no history.
	LatestByPair(ctx context.Context, db *gorm.DB, pairKey string) (*Invitation, error)

	// MarkResponded transitions a pending invitation to the given terminal
	// status. It reports false when the row was not pending anymore.
	MarkResponded(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, respondedAt time.Time) (bool, error)

	CountPendingTo(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	ListPendingReceived(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*Invitation, error)
	ListPendingSent(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*Invitation, error)
}
