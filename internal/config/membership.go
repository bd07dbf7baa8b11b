package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// MembershipConfig holds the tunables of the expiry sweep and reminder email.
type MembershipConfig struct {
	ExpiryRunHour   int            `mapstructure:"expiryRunHour"`
	ExpiryBatchSize int            `mapstructure:"expiryBatchSize"`
	Reminder        ReminderConfig `mapstructure:"reminder"`
	DashboardMonths DashboardRange `mapstructure:"dashboard"`
}

type ReminderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Subject string `mapstructure:"subject"`
	// Body is a text/template rendered with .Name and .DueDate.
	Body string `mapstructure:"body"`
}

type DashboardRange struct {
	Default int `mapstructure:"default"`
	Max     int `mapstructure:"max"`
}

const defaultReminderBody = "Hello {{.Name}},\n\n" +
	"Your gym membership expired on {{.DueDate}}. Please visit the front desk or use the app to clear your dues and continue your fitness journey!\n\n" +
	"Thank you."

func DefaultMembershipConfig() MembershipConfig {
	return MembershipConfig{
		ExpiryRunHour:   0,
		ExpiryBatchSize: 200,
		Reminder: ReminderConfig{
			Enabled: true,
			Subject: "Gym Membership Payment Due",
			Body:    defaultReminderBody,
		},
		DashboardMonths: DashboardRange{Default: 6, Max: 24},
	}
}

type MembershipConfigHolder struct {
	current atomic.Value // holds MembershipConfig
}

// NewStaticMembershipConfigHolder returns a holder that never reloads.
func NewStaticMembershipConfigHolder(cfg MembershipConfig) *MembershipConfigHolder {
	holder := &MembershipConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewMembershipConfigHolder(log *zap.Logger) (*MembershipConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("membership.config")

	v := viper.New()

	v.SetConfigName("membership")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/gymdesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GYMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultMembershipConfig()
	v.SetDefault("membership.expiryRunHour", defaults.ExpiryRunHour)
	v.SetDefault("membership.expiryBatchSize", defaults.ExpiryBatchSize)
	v.SetDefault("membership.reminder.enabled", defaults.Reminder.Enabled)
	v.SetDefault("membership.reminder.subject", defaults.Reminder.Subject)
	v.SetDefault("membership.reminder.body", defaults.Reminder.Body)
	v.SetDefault("membership.dashboard.default", defaults.DashboardMonths.Default)
	v.SetDefault("membership.dashboard.max", defaults.DashboardMonths.Max)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg MembershipConfig
	if err := v.UnmarshalKey("membership", &cfg); err != nil {
		return nil, err
	}
	if err := validateMembershipConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticMembershipConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated MembershipConfig
		if err := v.UnmarshalKey("membership", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateMembershipConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *MembershipConfigHolder) Get() MembershipConfig {
	if h == nil {
		return DefaultMembershipConfig()
	}
	return h.current.Load().(MembershipConfig)
}

func validateMembershipConfig(cfg MembershipConfig) error {
	if cfg.ExpiryRunHour < 0 || cfg.ExpiryRunHour > 23 {
		return errors.New("membership.expiryRunHour must be between 0 and 23")
	}
	if cfg.ExpiryBatchSize <= 0 {
		return errors.New("membership.expiryBatchSize must be positive")
	}
	if strings.TrimSpace(cfg.Reminder.Subject) == "" {
		return errors.New("membership.reminder.subject cannot be empty")
	}
	if strings.TrimSpace(cfg.Reminder.Body) == "" {
		return errors.New("membership.reminder.body cannot be empty")
	}
	if cfg.DashboardMonths.Default < 1 || cfg.DashboardMonths.Max < cfg.DashboardMonths.Default {
		return errors.New("membership.dashboard range is invalid")
	}
	return nil
}
