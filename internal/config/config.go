package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort  int    `mapstructure:"APP_PORT" validate:"min=1,max=65535"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseDriver    string        `mapstructure:"DATABASE_DRIVER" validate:"oneof=postgres sqlite3"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL" validate:"required"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS" validate:"min=1"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS" validate:"min=0"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`

	CompletionProvider string `mapstructure:"COMPLETION_PROVIDER" validate:"oneof=openai ark"`
	OpenAIAPIKey       string `mapstructure:"OPENAI_API_KEY" validate:"required"`
	OpenAIBaseURL      string `mapstructure:"OPENAI_BASE_URL"`
	CompletionModel    string `mapstructure:"COMPLETION_MODEL" validate:"required"`
	ArkBaseURL         string `mapstructure:"ARK_BASE_URL"`
	ArkRegion          string `mapstructure:"ARK_REGION"`

	HistoryWindow     int   `mapstructure:"HISTORY_WINDOW" validate:"min=1"`
	PersonaSampleSize int   `mapstructure:"PERSONA_SAMPLE_SIZE" validate:"min=0"`
	MaxUploadBytes    int64 `mapstructure:"MAX_UPLOAD_BYTES" validate:"min=1"`

	SessionCookieName  string        `mapstructure:"SESSION_COOKIE_NAME" validate:"required"`
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	CookieSecure       bool          `mapstructure:"COOKIE_SECURE"`

	PasswordHasher string `mapstructure:"PASSWORD_HASHER" validate:"oneof=bcrypt sha256"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("COMPLETION_PROVIDER", "openai")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_BASE_URL", "")
	viper.SetDefault("COMPLETION_MODEL", "gpt-4o")
	viper.SetDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3")
	viper.SetDefault("ARK_REGION", "cn-beijing")
	viper.SetDefault("HISTORY_WINDOW", 15)
	viper.SetDefault("PERSONA_SAMPLE_SIZE", 5)
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("SESSION_COOKIE_NAME", "memochat_client")
	viper.SetDefault("SESSION_IDLE_TIMEOUT", "24h")
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("PASSWORD_HASHER", "bcrypt")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required secrets and enumerated settings.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var problems []string
	for _, fieldErr := range validationErrors {
		key := fieldErr.Field()
		if f, ok := configKeys[key]; ok {
			key = f
		}
		problems = append(problems, fmt.Sprintf("%s failed on the '%s' rule", key, fieldErr.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// configKeys maps struct fields to the environment keys users actually set.
var configKeys = map[string]string{
	"AppPort":            "APP_PORT",
	"DatabaseDriver":     "DATABASE_DRIVER",
	"DatabaseURL":        "DATABASE_URL",
	"DBMaxOpenConns":     "DB_MAX_OPEN_CONNS",
	"DBMaxIdleConns":     "DB_MAX_IDLE_CONNS",
	"CompletionProvider": "COMPLETION_PROVIDER",
	"OpenAIAPIKey":       "OPENAI_API_KEY",
	"CompletionModel":    "COMPLETION_MODEL",
	"HistoryWindow":      "HISTORY_WINDOW",
	"PersonaSampleSize":  "PERSONA_SAMPLE_SIZE",
	"MaxUploadBytes":     "MAX_UPLOAD_BYTES",
	"SessionCookieName":  "SESSION_COOKIE_NAME",
	"PasswordHasher":     "PASSWORD_HASHER",
}
