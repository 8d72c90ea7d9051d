// Copyright (c) Microsoft. All rights reserved.

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("FOUNDRY_PROJECT_ENDPOINT", "https://demo.services.ai.azure.com/api/projects/pizza")
		defer os.Clearenv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "gpt-4o", cfg.Foundry.Model)
		assert.Equal(t, "2025-05-01", cfg.Foundry.APIVersion)
		assert.Equal(t, "guest@contoso.com", cfg.UserID)
		assert.Equal(t, "pizza_store", cfg.MCP.Label)
		assert.Empty(t, cfg.MCP.URL)
		assert.False(t, cfg.SpeechEnabled())
		assert.False(t, cfg.Debug)
	})

	t.Run("loads values from environment", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("FOUNDRY_PROJECT_ENDPOINT", "https://demo.services.ai.azure.com/api/projects/pizza")
		_ = os.Setenv("FOUNDRY_API_KEY", "secret")
		_ = os.Setenv("FOUNDRY_MODEL", "gpt-4o-mini")
		_ = os.Setenv("PIZZA_USER_ID", "mario@contoso.com")
		_ = os.Setenv("PIZZA_MCP_URL", "https://tools.contoso.com/mcp")
		_ = os.Setenv("SPEECH_KEY", "speech-secret")
		_ = os.Setenv("SPEECH_REGION", "westeurope")
		_ = os.Setenv("SPEECH_VOICE", "en-US-JennyNeural")
		_ = os.Setenv("DEBUG", "1")
		defer os.Clearenv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "secret", cfg.Foundry.APIKey)
		assert.Equal(t, "gpt-4o-mini", cfg.Foundry.Model)
		assert.Equal(t, "mario@contoso.com", cfg.UserID)
		assert.Equal(t, "https://tools.contoso.com/mcp", cfg.MCP.URL)
		assert.True(t, cfg.SpeechEnabled())
		assert.Equal(t, "en-US-JennyNeural", cfg.Speech.Voice)
		assert.True(t, cfg.Debug)
	})

	t.Run("missing endpoint is an error", func(t *testing.T) {
		os.Clearenv()

		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingEndpoint)
	})

	t.Run("speech credentials must come in pairs", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("FOUNDRY_PROJECT_ENDPOINT", "https://demo.services.ai.azure.com/api/projects/pizza")
		_ = os.Setenv("SPEECH_KEY", "speech-secret")
		defer os.Clearenv()

		_, err := Load()
		assert.Error(t, err)
	})
}
