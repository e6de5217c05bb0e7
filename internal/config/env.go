package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvConfigPath     = "JARVIS_CONFIG"
	EnvExchangeKey    = "EXCHANGE_API_KEY"
	EnvExchangeSecret = "EXCHANGE_SECRET"
	EnvLLMKey         = "LLM_API_KEY"
	EnvLogLevel       = "JARVIS_LOG_LEVEL"
	EnvExecutionMode  = "JARVIS_EXECUTION_MODE"
	EnvTelegramToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChat   = "TELEGRAM_CHAT_ID"
)

// LoadDotEnv populates the process environment from the given .env files.
// Missing files are skipped; variables already set are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

type envBinding struct {
	name   string
	key    string
	target func(c *Config) *string
}

var envBindings = []envBinding{
	{name: EnvExchangeKey, key: "execution.api_key", target: func(c *Config) *string { return &c.Execution.APIKey }},
	{name: EnvExchangeSecret, key: "execution.api_secret", target: func(c *Config) *string { return &c.Execution.APISecret }},
	{name: EnvLLMKey, key: "explain.api_key", target: func(c *Config) *string { return &c.Explain.APIKey }},
	{name: EnvLogLevel, key: "app.log_level", target: func(c *Config) *string { return &c.App.LogLevel }},
	{name: EnvExecutionMode, key: "execution.mode", target: func(c *Config) *string { return &c.Execution.Mode }},
	{name: EnvTelegramToken, key: "notify.telegram_token", target: func(c *Config) *string { return &c.Notify.TelegramToken }},
	{name: EnvTelegramChat, key: "notify.telegram_chat_id", target: func(c *Config) *string { return &c.Notify.TelegramChatID }},
}

// applyEnv lets non-empty environment variables override file values.
func (c *Config) applyEnv(lookup func(string) (string, bool), keys keySet) {
	if lookup == nil {
		return
	}
	for _, b := range envBindings {
		val, ok := lookup(b.name)
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		*b.target(c) = strings.TrimSpace(val)
		if keys != nil {
			keys.mark(b.key)
		}
	}
}
