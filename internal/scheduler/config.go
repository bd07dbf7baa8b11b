package scheduler

import (
	"strings"
	"time"

	"github.com/smallbiznis/gymdesk/internal/config"
)

const (
	JobMembershipExpiry = "membership_expiry"
	JobMetricsPush      = "metrics_push"
)

// Config controls scheduler intervals and timeouts. The expiry hour and
// batch size live in the hot-reloaded membership config.
type Config struct {
	RunInterval   time.Duration
	ExpiryTimeout time.Duration
	PushInterval  time.Duration
	PushTimeout   time.Duration
	ExpiryLockTTL time.Duration
	EnabledJobs   []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:   time.Minute,
		ExpiryTimeout: 5 * time.Minute,
		PushInterval:  time.Minute,
		PushTimeout:   10 * time.Second,
		ExpiryLockTTL: 23 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.ExpiryTimeout <= 0 {
		c.ExpiryTimeout = defaults.ExpiryTimeout
	}
	if c.PushInterval <= 0 {
		c.PushInterval = defaults.PushInterval
	}
	if c.PushTimeout <= 0 {
		c.PushTimeout = defaults.PushTimeout
	}
	if c.ExpiryLockTTL <= 0 {
		c.ExpiryLockTTL = defaults.ExpiryLockTTL
	}
	return c
}

func (c Config) isJobEnabled(job string) bool {
	if len(c.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range c.EnabledJobs {
		if strings.EqualFold(strings.TrimSpace(enabled), job) {
			return true
		}
	}
	return false
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		PushInterval: cfg.MetricsPush.Interval,
	}
}
