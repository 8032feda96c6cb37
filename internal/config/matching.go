package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// MatchingConfig holds the matchmaking policy knobs that product wants to be
// able to flip without a redeploy.
type MatchingConfig struct {
	// EnforceDateAvailability rejects invitations for a date the recipient has
	// not advertised as available.
	EnforceDateAvailability bool `mapstructure:"enforceDateAvailability"`

	// InviteRatePerMinute and InviteBurst bound how fast a single user may
	// send invitations. Zero disables the limit.
	InviteRatePerMinute int `mapstructure:"inviteRatePerMinute"`
	InviteBurst         int `mapstructure:"inviteBurst"`
}

func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		EnforceDateAvailability: true,
		InviteRatePerMinute:     20,
		InviteBurst:             5,
	}
}

type MatchingConfigHolder struct {
	current atomic.Value // holds MatchingConfig
}

func NewMatchingConfigHolder(log *zap.Logger) (*MatchingConfigHolder, error) {
	log = log.Named("matching.config")
	v := viper.New()

	v.SetConfigName("matching")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/holidaytable/config") // Volume-mounted config
	v.AddConfigPath("/etc/holidaytable")            // System config
	v.AddConfigPath(".")                            // Current directory (dev mode)

	v.SetEnvPrefix("HOLIDAYTABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultMatchingConfig()
	v.SetDefault("matching.enforceDateAvailability", defaults.EnforceDateAvailability)
	v.SetDefault("matching.inviteRatePerMinute", defaults.InviteRatePerMinute)
	v.SetDefault("matching.inviteBurst", defaults.InviteBurst)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg MatchingConfig
	if err := v.UnmarshalKey("matching", &cfg); err != nil {
		return nil, err
	}
	if err := validateMatchingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &MatchingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated MatchingConfig
		if err := v.UnmarshalKey("matching", &updated); err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		if err := validateMatchingConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticMatchingConfigHolder wraps a fixed config, used by tests.
func NewStaticMatchingConfigHolder(cfg MatchingConfig) *MatchingConfigHolder {
	holder := &MatchingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *MatchingConfigHolder) Get() MatchingConfig {
	return h.current.Load().(MatchingConfig)
}

func validateMatchingConfig(cfg MatchingConfig) error {
	if cfg.InviteRatePerMinute < 0 || cfg.InviteBurst < 0 {
		return errors.New("matching rate limits cannot be negative")
	}
	return nil
}
