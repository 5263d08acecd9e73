// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	Env            string `mapstructure:"APP_ENV"`

	// Persona service (external generation API)
	PersonaBaseURL string `mapstructure:"PERSONA_BASE_URL"`

	// Scheduler toggles and triggers. Cron expressions use the six-field
	// form with a leading seconds field. Disabling a flag keeps the trigger
	// registered but makes its cycle a guaranteed no-op.
	PostGenerationEnabled    bool   `mapstructure:"SCHEDULER_POST_GENERATION_ENABLED"`
	PostGenerationCron       string `mapstructure:"SCHEDULER_POST_GENERATION_CRON"`
	CommentGenerationEnabled bool   `mapstructure:"SCHEDULER_COMMENT_GENERATION_ENABLED"`
	CommentGenerationCron    string `mapstructure:"SCHEDULER_COMMENT_GENERATION_CRON"`
	LikeGenerationEnabled    bool   `mapstructure:"SCHEDULER_LIKE_GENERATION_ENABLED"`
	LikeGenerationCron       string `mapstructure:"SCHEDULER_LIKE_GENERATION_CRON"`
	SchedulerWorkers         int    `mapstructure:"SCHEDULER_WORKERS"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8390")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "murmur")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PERSONA_BASE_URL", "http://localhost:8002")
	viper.SetDefault("SCHEDULER_POST_GENERATION_ENABLED", true)
	viper.SetDefault("SCHEDULER_POST_GENERATION_CRON", "0 0 * * * *")
	viper.SetDefault("SCHEDULER_COMMENT_GENERATION_ENABLED", true)
	viper.SetDefault("SCHEDULER_COMMENT_GENERATION_CRON", "0 30 * * * *")
	viper.SetDefault("SCHEDULER_LIKE_GENERATION_ENABLED", true)
	viper.SetDefault("SCHEDULER_LIKE_GENERATION_CRON", "0 15 * * * *")
	viper.SetDefault("SCHEDULER_WORKERS", 4)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and well-formed.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.PersonaBaseURL == "" {
		return errors.New("PERSONA_BASE_URL is required")
	}
	if c.SchedulerWorkers < 1 {
		return errors.New("SCHEDULER_WORKERS must be at least 1")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for name, expr := range map[string]string{
		"SCHEDULER_POST_GENERATION_CRON":    c.PostGenerationCron,
		"SCHEDULER_COMMENT_GENERATION_CRON": c.CommentGenerationCron,
		"SCHEDULER_LIKE_GENERATION_CRON":    c.LikeGenerationCron,
	} {
		if _, err := parser.Parse(expr); err != nil {
			return fmt.Errorf("%s %q is not a valid six-field cron expression: %w", name, expr, err)
		}
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	}

	return nil
}
