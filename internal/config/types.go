package config

import (
	"time"

	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
	"github.com/andrzej-wegierski/identiverse-backend/internal/throttle"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type JWTConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Expiry     time.Duration `mapstructure:"expiry"`
}

// LinksConfig holds the frontend base URL and path templates used to build
// the links embedded in confirmation and reset emails.
type LinksConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	ConfirmEmailPath  string `mapstructure:"confirm_email_path"`
	ResetPasswordPath string `mapstructure:"reset_password_path"`
}

type AuthConfig struct {
	JWT           JWTConfig       `mapstructure:"jwt"`
	Password      password.Config `mapstructure:"password"`
	LoginThrottle throttle.Config `mapstructure:"login_throttle"`
	EmailThrottle throttle.Config `mapstructure:"email_throttle"`
	Links         LinksConfig     `mapstructure:"links"`

	// FailRegistrationOnEmailError aborts registration when the
	// confirmation email cannot be dispatched. Off by default: the send
	// error is logged and the account stands.
	FailRegistrationOnEmailError bool `mapstructure:"fail_registration_on_email_error"`
}

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
}
