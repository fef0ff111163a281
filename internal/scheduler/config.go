package scheduler

import (
	"time"

	"github.com/smallbiznis/taxbridge/internal/config"
)

// Config controls the run loop and task locking.
type Config struct {
	RunInterval    time.Duration
	DefaultTimeout time.Duration
	LockTTL        time.Duration
	LockPrefix     string
	Disabled       bool
}

func DefaultConfig() Config {
	return Config{
		RunInterval:    time.Minute,
		DefaultTimeout: 10 * time.Minute,
		LockTTL:        15 * time.Minute,
		LockPrefix:     "taxbridge:scheduler:",
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval: cfg.SchedulerInterval,
		Disabled:    cfg.SchedulerDisabled,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = defaults.DefaultTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.LockPrefix == "" {
		c.LockPrefix = defaults.LockPrefix
	}
	return c
}
