package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *Profile) error
	Update(ctx context.Context, db *gorm.DB, profile *Profile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Profile, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*Profile, error)
	CountUsernamePrefix(ctx context.Context, db *gorm.DB, base string) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListProfileFilter, page pagination.Pagination) ([]*Profile, error)
}
