package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/profile/domain"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	result := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("id = ?", profile.UserID).
		Updates(map[string]any{
			"display_name":    profile.DisplayName,
			"role":            profile.Role,
			"available_dates": profile.AvailableDates,
			"headline":        profile.Headline,
			"bio":             profile.Bio,
			"city":            profile.City,
			"photo_url":       profile.PhotoURL,
			"visible":         profile.Visible,
			"updated_at":      profile.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).
		Where("id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).
		Where("username = ?", username).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repo) CountUsernamePrefix(ctx context.Context, db *gorm.DB, base string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("username = ? OR username LIKE ?", base, base+"-%").
		Count(&count).Error
	return count, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListProfileFilter, page pagination.Pagination) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	stmt := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("visible = ?", true)
	if filter.Role != "" && filter.Role != domain.RoleBoth {
		stmt = stmt.Where("role IN ?", []domain.Role{filter.Role, domain.RoleBoth})
	}
	if filter.Date != "" {
		// jsonb containment on postgres, json_each scan elsewhere
		if db.Dialector.Name() == "postgres" {
			stmt = stmt.Where("available_dates @> ?", datatypes.JSON(fmt.Sprintf("[%q]", filter.Date)))
		} else {
			stmt = stmt.Where(datatypes.JSONArrayQuery("available_dates").Contains(filter.Date))
		}
	}
	if filter.City != "" {
		stmt = stmt.Where("city = ?", filter.City)
	}
	if filter.VerifiedOnly {
		stmt = stmt.Where("verified = ?", true)
	}
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
