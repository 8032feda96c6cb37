package domain

import (
	"context"
	"time"
)

// HolidayDate is one of the supported celebration dates. The set is small,
// fixed, and seeded by migration; codes are stable identifiers like "dec-24".
type HolidayDate struct {
	Code      string    `json:"code" gorm:"type:text;primaryKey;column:code"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Month     int       `json:"month" gorm:"type:smallint;not null"`
	Day       int       `json:"day" gorm:"type:smallint;not null"`
	SortOrder int       `json:"-" gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (HolidayDate) TableName() string { return "holiday_dates" }

type Repository interface {
	ListHolidayDates(ctx context.Context) ([]HolidayDate, error)
	IsHolidayDate(ctx context.Context, code string) (bool, error)
}
