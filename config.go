package twilio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Config holds the process-wide Twilio settings. It is read once at startup
// and treated as immutable afterwards.
type Config struct {
	// SID is the Twilio account SID, used when originating messages.
	SID string `json:"sid"`
	// Token is the auth token. It keys webhook signature validation and is
	// required for every driver.
	Token string `json:"token"`
	// FromNumber is the number outbound messages are originated from.
	FromNumber string `json:"fromNumber"`
	// Voice and Language are the defaults for the Say verb.
	Voice    string `json:"voice"`
	Language string `json:"language"`
	// Input is the default Gather input mode (dtmf, speech or "dtmf speech").
	Input string `json:"input"`
	// APIBaseURL overrides the REST API endpoint. Empty means the public
	// Twilio API.
	APIBaseURL string `json:"apiBaseUrl,omitempty"`
}

// ErrMissingToken reports a fatal misconfiguration: without the auth token no
// webhook can be authenticated.
var ErrMissingToken = errors.New("twilio: auth token is not configured")

// Validate reports fatal configuration errors. It runs before any request
// processing; a missing token must never be discovered mid-request.
func (c Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// LoadConfig reads a JSON config file and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()
	return LoadConfigFromReader(f)
}

// LoadConfigFromReader decodes a JSON config and applies environment
// overrides.
func LoadConfigFromReader(r io.Reader) (Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides applies TWILIO_-prefixed environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	envMap := map[string]*string{
		"TWILIO_ACCOUNT_SID": &cfg.SID,
		"TWILIO_AUTH_TOKEN":  &cfg.Token,
		"TWILIO_FROM_NUMBER": &cfg.FromNumber,
	}
	for env, ptr := range envMap {
		if val := os.Getenv(env); val != "" {
			*ptr = val
		}
	}
}
