package config

import "time"

// EconomyConfig holds passive income settings
type EconomyConfig struct {
	IncomePerHour   int64         `mapstructure:"income_per_hour" validate:"min=0"`
	IncomePerBase   int64         `mapstructure:"income_per_base" validate:"min=0"`
	AccrualInterval time.Duration `mapstructure:"accrual_interval" validate:"required"`
}
