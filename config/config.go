// Package config loads and persists settings from ~/.voicekey/config.json,
// with environment variables (and a local .env file) taking precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"voicekey/hotkey"
)

var ErrMissingCredential = errors.New("no API key configured")

type Config struct {
	Provider string `json:"provider,omitempty"` // groq, openai or custom

	GroqAPIKey   string `json:"groq_api_key,omitempty"`
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`

	CustomBaseURL string `json:"custom_base_url,omitempty"`
	CustomAPIKey  string `json:"custom_api_key,omitempty"`
	CustomModel   string `json:"custom_model,omitempty"`

	PTTKey    string `json:"ptt_key,omitempty"`
	Device    string `json:"device,omitempty"` // substring match against input device names
	Format    string `json:"format,omitempty"` // upload container: wav or flac
	AutoPaste *bool  `json:"autopaste,omitempty"`
}

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".voicekey"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file if present, then applies .env and
// environment overrides, then fills defaults.
func Load() (Config, error) {
	var cfg Config

	path, err := Path()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	godotenv.Load()

	overlay := map[string]*string{
		"GROQ_API_KEY":      &cfg.GroqAPIKey,
		"OPENAI_API_KEY":    &cfg.OpenAIAPIKey,
		"VOICEKEY_PROVIDER": &cfg.Provider,
		"VOICEKEY_BASE_URL": &cfg.CustomBaseURL,
		"VOICEKEY_API_KEY":  &cfg.CustomAPIKey,
		"VOICEKEY_MODEL":    &cfg.CustomModel,
		"VOICEKEY_PTT_KEY":  &cfg.PTTKey,
		"VOICEKEY_DEVICE":   &cfg.Device,
		"VOICEKEY_FORMAT":   &cfg.Format,
	}
	for key, dst := range overlay {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		switch {
		case c.GroqAPIKey != "":
			c.Provider = "groq"
		case c.OpenAIAPIKey != "":
			c.Provider = "openai"
		case c.CustomBaseURL != "":
			c.Provider = "custom"
		default:
			c.Provider = "groq"
		}
	}
	if c.PTTKey == "" {
		c.PTTKey = hotkey.DefaultBinding
	}
	if c.Format == "" {
		c.Format = "wav"
	}
	if c.AutoPaste == nil {
		t := true
		c.AutoPaste = &t
	}
}

func (c Config) Validate() error {
	switch c.Provider {
	case "groq":
		if c.GroqAPIKey == "" {
			return fmt.Errorf("%w: set GROQ_API_KEY or run with -setup", ErrMissingCredential)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY or run with -setup", ErrMissingCredential)
		}
	case "custom":
		if c.CustomBaseURL == "" {
			return fmt.Errorf("custom provider needs a base URL (VOICEKEY_BASE_URL or -setup)")
		}
	default:
		return fmt.Errorf("unknown provider %q (use groq, openai or custom)", c.Provider)
	}
	if c.Format != "wav" && c.Format != "flac" {
		return fmt.Errorf("unknown format %q (use wav or flac)", c.Format)
	}
	if err := hotkey.Known(c.PTTKey); err != nil {
		return err
	}
	return nil
}

// Save writes the config with owner-only permissions since it holds
// API keys.
func (c Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.json")
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
