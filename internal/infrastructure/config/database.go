package config

import "time"

// DatabaseConfig selects the store behind empires, queues and the ledger.
// PostgreSQL is the production store; SQLite serves local runs and tests.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// URL wins over the discrete fields, e.g. postgresql://imperium:secret@db:5432/imperium
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// Path of the SQLite file, ":memory:" for a throwaway database
	Path string `mapstructure:"path"`

	// Pool applies to PostgreSQL; SQLite runs on a single connection
	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig bounds the PostgreSQL connection pool
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}
