package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration. It is built once at startup and
// passed to constructors; nothing mutates it afterwards.
type Config struct {
	AppPort        string `mapstructure:"APP_PORT" validate:"required"`
	LogLevel       string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER" validate:"oneof=sqlite postgres"`
	DatabaseDSN    string `mapstructure:"DATABASE_DSN" validate:"required"`
	JWTSecret      string `mapstructure:"JWT_SECRET" validate:"required"`
	RabbitMQURL    string `mapstructure:"RABBITMQ_URL" validate:"omitempty,url"`
	MoMo           MoMo   `mapstructure:",squash"`
}

// MoMo holds the wallet gateway settings.
type MoMo struct {
	Endpoint    string        `mapstructure:"MOMO_ENDPOINT" validate:"required,url"`
	PartnerCode string        `mapstructure:"MOMO_PARTNER_CODE" validate:"required"`
	AccessKey   string        `mapstructure:"MOMO_ACCESS_KEY" validate:"required"`
	SecretKey   string        `mapstructure:"MOMO_SECRET_KEY" validate:"required"`
	ReturnURL   string        `mapstructure:"MOMO_RETURN_URL" validate:"required,url"`
	NotifyURL   string        `mapstructure:"MOMO_NOTIFY_URL" validate:"required,url"`
	RequestType string        `mapstructure:"MOMO_REQUEST_TYPE" validate:"required"`
	Timeout     time.Duration `mapstructure:"MOMO_TIMEOUT" validate:"gt=0"`
}

var defaults = map[string]interface{}{
	"APP_PORT":          ":5000",
	"LOG_LEVEL":         "info",
	"DATABASE_DRIVER":   "sqlite",
	"DATABASE_DSN":      "vitamart.db?_busy_timeout=5000",
	"JWT_SECRET":        "",
	"RABBITMQ_URL":      "",
	"MOMO_ENDPOINT":     "https://test-payment.momo.vn/v2/gateway/api/create",
	"MOMO_PARTNER_CODE": "",
	"MOMO_ACCESS_KEY":   "",
	"MOMO_SECRET_KEY":   "",
	"MOMO_RETURN_URL":   "http://localhost:3000/payment-confirm",
	"MOMO_NOTIFY_URL":   "http://localhost:5000/api/payment-notify",
	"MOMO_REQUEST_TYPE": "captureMoMoWallet",
	"MOMO_TIMEOUT":      "10s",
}

// Load reads configuration from defaults, an optional config file
// (config.yaml in the working directory) and the environment, in increasing
// order of precedence, then validates it.
func Load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", e.Field(), e.Tag()))
			}
			return nil, fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LogFields returns the settings that are safe to log. Secrets are omitted.
func (c *Config) LogFields() []interface{} {
	return []interface{}{
		"port", c.AppPort,
		"databaseDriver", c.DatabaseDriver,
		"broker", c.RabbitMQURL != "",
		"gateway", c.MoMo.Endpoint,
		"partnerCode", c.MoMo.PartnerCode,
		"notifyUrl", c.MoMo.NotifyURL,
	}
}
