package config

// CatalogConfig points at the item catalog file
type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}
