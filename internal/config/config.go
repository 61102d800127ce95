package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string  `mapstructure:"PORT"`
	Env            string  `mapstructure:"ENV"`
	DatabaseURL    string  `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32   `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32   `mapstructure:"DB_MIN_CONNS"`
	RedisURL       string  `mapstructure:"REDIS_URL"`
	JWTSecret      string  `mapstructure:"JWT_SECRET"`
	GeocoderURL    string  `mapstructure:"GEOCODER_URL"`
	SMTPHost       string  `mapstructure:"SMTP_HOST"`
	SMTPPort       string  `mapstructure:"SMTP_PORT"`
	SMTPFrom       string  `mapstructure:"SMTP_FROM"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("GEOCODER_URL", "https://api.postcodes.io")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_FROM", "no-reply@dental.local")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("GEOCODER_URL")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("SMTP_FROM")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// the JWT secret shared with the session service must be set, otherwise
// every bearer token would be rejected.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.SMTPHost == "" && c.IsProduction() {
		return fmt.Errorf("SMTP_HOST is required in production")
	}
	return nil
}
