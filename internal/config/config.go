// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// DefaultAIAPIURL is the chat-completions endpoint used when AI_API_URL is unset.
const DefaultAIAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// Config holds the service configuration loaded from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	// Environment variable: PORT
	Port string `koanf:"PORT"`

	// DBPath is the path to the sqlite database file.
	// Environment variable: DB_PATH
	DBPath string `koanf:"DB_PATH"`

	// AIAPIKey is the bearer token for the completion endpoint.
	// Environment variable: AI_API_KEY
	AIAPIKey string `koanf:"AI_API_KEY"`

	// AIAPIURL is the chat-completions endpoint URL.
	// Environment variable: AI_API_URL
	AIAPIURL string `koanf:"AI_API_URL"`

	// AIModel is the model name sent with each completion request.
	// Environment variable: AI_MODEL
	AIModel string `koanf:"AI_MODEL"`

	// AITimeoutSeconds bounds how long one completion call may block.
	// Environment variable: AI_TIMEOUT_SECONDS
	AITimeoutSeconds int `koanf:"AI_TIMEOUT_SECONDS"`
}

// AITimeout returns the completion call bound as a duration.
func (c Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// Load reads configuration from the environment and applies defaults.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "expenses.db"
	}
	if cfg.AIAPIURL == "" {
		cfg.AIAPIURL = DefaultAIAPIURL
	}
	if cfg.AIModel == "" {
		cfg.AIModel = "llama-3.3-70b-versatile"
	}
	if cfg.AITimeoutSeconds <= 0 {
		cfg.AITimeoutSeconds = 30
	}
}
