package seed

import (
	"context"
	"errors"

	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// holidayDates is the fixed celebration-date catalogue. Codes are stable
// identifiers referenced by profiles and invitations; never rename one.
var holidayDates = []referencedomain.HolidayDate{
	{Code: "thanksgiving", Name: "Thanksgiving", Month: 11, Day: 27, SortOrder: 10},
	{Code: "dec-24", Name: "Christmas Eve", Month: 12, Day: 24, SortOrder: 20},
	{Code: "dec-25", Name: "Christmas Day", Month: 12, Day: 25, SortOrder: 30},
	{Code: "dec-26", Name: "Boxing Day", Month: 12, Day: 26, SortOrder: 40},
	{Code: "dec-31", Name: "New Year's Eve", Month: 12, Day: 31, SortOrder: 50},
	{Code: "jan-1", Name: "New Year's Day", Month: 1, Day: 1, SortOrder: 60},
}

// EnsureHolidayDates seeds the holiday-date catalogue, leaving any rows a
// deployment customized in place.
func EnsureHolidayDates(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	dates := make([]referencedomain.HolidayDate, len(holidayDates))
	copy(dates, holidayDates)

	ctx := context.Background()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(&dates).Error
}
