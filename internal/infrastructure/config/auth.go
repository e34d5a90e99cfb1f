package config

// AuthConfig selects how the acting player is identified. Tokens are issued
// by an external service; this server only verifies them.
type AuthConfig struct {
	// "jwt" verifies a bearer token, "header" trusts a header set by a gateway
	Mode string `mapstructure:"mode" validate:"required,oneof=jwt header"`

	// Header carrying the actor in header mode
	Header string `mapstructure:"header"`

	// HMAC secret and expected issuer in jwt mode
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}
