package config

import "time"

// RedisConfig holds the optional Redis connection used for the sweep lease.
// When disabled every process sweeps on its own.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"min=0"`
	LeaseKey string        `mapstructure:"lease_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}
