package migration

import (
	authdomain "github.com/holidaytable/holidaytable/internal/auth/domain"
	"github.com/holidaytable/holidaytable/internal/config"
	connectiondomain "github.com/holidaytable/holidaytable/internal/connection/domain"
	messagingdomain "github.com/holidaytable/holidaytable/internal/messaging/domain"
	notificationdomain "github.com/holidaytable/holidaytable/internal/notification/domain"
	profiledomain "github.com/holidaytable/holidaytable/internal/profile/domain"
	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
	"github.com/holidaytable/holidaytable/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// The versioned migrations target postgres; other dialects are
			// for local development and rely on gorm's schema sync.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&referencedomain.HolidayDate{},
				&profiledomain.Profile{},
				&connectiondomain.Invitation{},
				&notificationdomain.NotificationEvent{},
				&notificationdomain.Notification{},
				&messagingdomain.Message{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureHolidayDates(conn)
	}),
)
