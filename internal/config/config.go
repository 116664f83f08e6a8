package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	ScoringProvider    string        `mapstructure:"SCORING_PROVIDER"`
	OpenAIAPIKey       string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel        string        `mapstructure:"OPENAI_MODEL"`
	GeminiAPIKey       string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel        string        `mapstructure:"GEMINI_MODEL"`
	ScoringTemperature float64       `mapstructure:"SCORING_TEMPERATURE"`
	ScoringMaxTokens   int           `mapstructure:"SCORING_MAX_TOKENS"`
	ScoringTimeout     time.Duration `mapstructure:"SCORING_TIMEOUT"`

	RetryAttempts    int           `mapstructure:"RETRY_ATTEMPTS"`
	RetryBaseDelay   time.Duration `mapstructure:"RETRY_BASE_DELAY"`
	BatchCooldown    time.Duration `mapstructure:"BATCH_COOLDOWN"`
	BatchAbortOnAuth bool          `mapstructure:"BATCH_ABORT_ON_AUTH"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisURL      string `mapstructure:"REDIS_URL"`
	StorageKey    string `mapstructure:"STORAGE_KEY"`
	SeedFile      string `mapstructure:"SEED_FILE"`

	QualifySchedule    string `mapstructure:"QUALIFY_SCHEDULE"`
	SlackWebhookURL    string `mapstructure:"SLACK_WEBHOOK_URL"`
	DiscordWebhookURL  string `mapstructure:"DISCORD_WEBHOOK_URL"`
	DefaultPhoneRegion string `mapstructure:"DEFAULT_PHONE_REGION"`
	MutationRatePerMin int    `mapstructure:"MUTATION_RATE_PER_MIN"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("SCORING_PROVIDER", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("SCORING_TEMPERATURE", 0.3)
	v.SetDefault("SCORING_MAX_TOKENS", 500)
	v.SetDefault("SCORING_TIMEOUT", "30s")

	v.SetDefault("RETRY_ATTEMPTS", 3)
	v.SetDefault("RETRY_BASE_DELAY", "1s")
	v.SetDefault("BATCH_COOLDOWN", "1s")
	v.SetDefault("BATCH_ABORT_ON_AUTH", true)

	v.SetDefault("STORAGE_DRIVER", "sqlite")
	v.SetDefault("SQLITE_PATH", "leadtriage.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("STORAGE_KEY", "lead-qualifier-storage")
	v.SetDefault("SEED_FILE", "")

	v.SetDefault("QUALIFY_SCHEDULE", "")
	v.SetDefault("SLACK_WEBHOOK_URL", "")
	v.SetDefault("DISCORD_WEBHOOK_URL", "")
	v.SetDefault("DEFAULT_PHONE_REGION", "NG")
	v.SetDefault("MUTATION_RATE_PER_MIN", 60)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Provider() {
	case "openai", "gemini", "mock":
	default:
		return fmt.Errorf("config: unknown SCORING_PROVIDER %q", c.ScoringProvider)
	}
	switch strings.ToLower(c.StorageDriver) {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("config: RETRY_ATTEMPTS must be at least 1")
	}
	if c.StorageKey == "" {
		return fmt.Errorf("config: STORAGE_KEY must not be empty")
	}
	return nil
}

// Provider resolves SCORING_PROVIDER. When unset it is openai if an OpenAI
// key is configured and the offline mock otherwise.
func (c Config) Provider() string {
	p := strings.ToLower(strings.TrimSpace(c.ScoringProvider))
	if p != "" {
		return p
	}
	if strings.TrimSpace(c.OpenAIAPIKey) != "" {
		return "openai"
	}
	return "mock"
}
