// Copyright (c) Microsoft. All rights reserved.

// Package config loads the chatbot's configuration from environment
// variables, with a .env file honored when present.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultUserID is the caller identity used when none is configured.
const DefaultUserID = "guest@contoso.com"

// Config holds the complete application configuration.
type Config struct {
	Foundry FoundryConfig
	MCP     MCPConfig
	Speech  SpeechConfig

	// UserID identifies the caller towards the remote tool server.
	UserID string

	// Debug enables verbose logging.
	Debug bool
}

// FoundryConfig holds agent service configuration.
type FoundryConfig struct {
	// Endpoint is the project endpoint URL. Required.
	Endpoint string

	// APIKey authenticates requests. When empty, Azure AD credentials
	// are used instead.
	APIKey string

	Model      string
	APIVersion string
}

// MCPConfig holds the remote tool server attachment configuration.
// A missing URL disables the attachment.
type MCPConfig struct {
	URL   string
	Label string
}

// SpeechConfig holds speech service configuration. Speech features are
// available only when both Key and Region are set.
type SpeechConfig struct {
	Key       string
	Region    string
	Voice     string
	Language  string
	PlayCmd   string
	RecordCmd string
}

// ErrMissingEndpoint is returned when the agent service endpoint is not set.
var ErrMissingEndpoint = errors.New("FOUNDRY_PROJECT_ENDPOINT is required")

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Foundry: FoundryConfig{
			Endpoint:   os.Getenv("FOUNDRY_PROJECT_ENDPOINT"),
			APIKey:     os.Getenv("FOUNDRY_API_KEY"),
			Model:      getEnv("FOUNDRY_MODEL", "gpt-4o"),
			APIVersion: getEnv("FOUNDRY_API_VERSION", "2025-05-01"),
		},
		MCP: MCPConfig{
			URL:   os.Getenv("PIZZA_MCP_URL"),
			Label: getEnv("PIZZA_MCP_LABEL", "pizza_store"),
		},
		Speech: SpeechConfig{
			Key:       os.Getenv("SPEECH_KEY"),
			Region:    os.Getenv("SPEECH_REGION"),
			Voice:     getEnv("SPEECH_VOICE", "en-US-AriaNeural"),
			Language:  getEnv("SPEECH_LANGUAGE", "en-US"),
			PlayCmd:   os.Getenv("SPEECH_PLAY_CMD"),
			RecordCmd: os.Getenv("SPEECH_RECORD_CMD"),
		},
		UserID: getEnv("PIZZA_USER_ID", DefaultUserID),
		Debug:  os.Getenv("DEBUG") != "",
	}

	if cfg.Foundry.Endpoint == "" {
		return Config{}, ErrMissingEndpoint
	}
	if (cfg.Speech.Key == "") != (cfg.Speech.Region == "") {
		return Config{}, fmt.Errorf("SPEECH_KEY and SPEECH_REGION must be set together")
	}

	return cfg, nil
}

// SpeechEnabled reports whether speech credentials are configured.
func (c Config) SpeechEnabled() bool {
	return c.Speech.Key != "" && c.Speech.Region != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
