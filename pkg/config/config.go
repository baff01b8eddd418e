package config

import (
	"encoding/json"
	"os"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Telegram   TelegramConfig   `json:"telegram"`
	OpenRouter OpenRouterConfig `json:"openrouter"`
	Chat       ChatConfig       `json:"chat"`
	Storage    StorageConfig    `json:"storage"`
	Notes      NotesConfig      `json:"notes"`
}

type TelegramConfig struct {
	// Token is the bot token from @BotFather. The bare TOKEN env name is
	// kept for compatibility with existing .env files.
	Token  string  `json:"token" env:"TOKEN"`
	Admins []int64 `json:"admins" env:"TGBOT_TELEGRAM_ADMINS"`
}

type OpenRouterConfig struct {
	APIKey  string `json:"api_key" env:"OPENROUTER_API_KEY"`
	APIBase string `json:"api_base" env:"OPENROUTER_API_BASE"`
}

type ChatConfig struct {
	Temperature      float64 `json:"temperature" env:"TGBOT_CHAT_TEMPERATURE"`
	MaxTokens        int     `json:"max_tokens" env:"TGBOT_CHAT_MAX_TOKENS"`
	DefaultPersonaID int64   `json:"default_persona_id" env:"TGBOT_CHAT_DEFAULT_PERSONA_ID"`
}

type StorageConfig struct {
	Path string `json:"path" env:"TGBOT_DB_PATH"`
}

type NotesConfig struct {
	MaxPerUser int `json:"max_per_user" env:"TGBOT_NOTES_MAX_PER_USER"`
}

func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{},
		OpenRouter: OpenRouterConfig{
			APIBase: "https://openrouter.ai/api/v1",
		},
		Chat: ChatConfig{
			Temperature:      0.7,
			MaxTokens:        1000,
			DefaultPersonaID: 1,
		},
		Storage: StorageConfig{
			Path: "notes.db",
		},
		Notes: NotesConfig{
			MaxPerUser: 50,
		},
	}
}

// LoadConfig reads the optional JSON config at path, then overlays
// environment variables on top of it. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the parts of the configuration every run mode needs.
// The Telegram token is validated separately because the local chat mode
// runs without it.
func (c *Config) Validate() error {
	if err := c.Chat.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Notes.Validate()
}

func (c *TelegramConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required),
	)
}

// IsAdmin reports whether userID is listed in telegram.admins.
func (c *TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *ChatConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.DefaultPersonaID, validation.Min(int64(1))),
	)
}

func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxPerUser, validation.Required, validation.Min(1)),
	)
}
