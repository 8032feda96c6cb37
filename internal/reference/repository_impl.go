package reference

import (
	"context"

	"github.com/holidaytable/holidaytable/internal/cache"
	"github.com/holidaytable/holidaytable/internal/reference/domain"
	"gorm.io/gorm"
)

type repository struct {
	db    *gorm.DB
	cache cache.HolidayDateCache
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{
		db:    db,
		cache: cache.NewHolidayDateCache(),
	}
}

func (r *repository) ListHolidayDates(ctx context.Context) ([]domain.HolidayDate, error) {
	if dates, ok := r.cache.GetDates(); ok {
		return dates, nil
	}

	var dates []domain.HolidayDate
	err := r.db.WithContext(ctx).
		Raw(`SELECT code, name, month, day, sort_order FROM holiday_dates ORDER BY sort_order, code`).
		Scan(&dates).Error
	if err != nil {
		return nil, err
	}

	r.cache.SetDates(dates)
	return dates, nil
}

func (r *repository) IsHolidayDate(ctx context.Context, code string) (bool, error) {
	dates, err := r.ListHolidayDates(ctx)
	if err != nil {
		return false, err
	}

	for _, d := range dates {
		if d.Code == code {
			return true, nil
		}
	}
	return false, nil
}
