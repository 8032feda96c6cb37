package cache

import (
	"time"

	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
)

const defaultHolidayTTL = 10 * time.Minute

const holidayListKey = "holiday_dates"

// HolidayDateCache stores the holiday-date catalogue for validation hot
// paths. The catalogue only changes on redeploy, so a short TTL is plenty.
type HolidayDateCache interface {
	GetDates() ([]referencedomain.HolidayDate, bool)
	SetDates(dates []referencedomain.HolidayDate)
	Invalidate()
}

type holidayDateCache struct {
	dates Cache[string, []referencedomain.HolidayDate]
	ttl   time.Duration
}

func NewHolidayDateCache() HolidayDateCache {
	return &holidayDateCache{
		dates: NewTTLCache[string, []referencedomain.HolidayDate](),
		ttl:   defaultHolidayTTL,
	}
}

func (c *holidayDateCache) GetDates() ([]referencedomain.HolidayDate, bool) {
	return c.dates.Get(holidayListKey)
}

func (c *holidayDateCache) SetDates(dates []referencedomain.HolidayDate) {
	c.dates.Set(holidayListKey, dates, c.ttl)
}

func (c *holidayDateCache) Invalidate() {
	c.dates.Delete(holidayListKey)
}
