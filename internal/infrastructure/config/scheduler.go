package config

import "time"

// SchedulerConfig holds production queue settings
type SchedulerConfig struct {
	// How often the background sweeper settles due entries
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`

	// Entries loaded per sweep round
	SweepBatch int `mapstructure:"sweep_batch" validate:"min=1"`

	// Work units per hour contributed by one level of a capacity structure
	RatePerLevel int64 `mapstructure:"rate_per_level" validate:"min=1"`

	// Rate used by floor-policy tracks at a location without capacity
	FloorPerHour int64 `mapstructure:"floor_per_hour" validate:"min=1"`
}
