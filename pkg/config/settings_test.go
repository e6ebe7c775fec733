package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultAI() AIConfig {
	return AIConfig{
		Provider:        "openai",
		OpenAIAPIKey:    "sk-test",
		OpenAIModel:     "gpt-3.5-turbo",
		Temperature:     0.7,
		MaxTokens:       1000,
		UseRealAI:       true,
		ProviderTimeout: 30 * time.Second,
	}
}

func TestSettings_SnapshotMasksSecrets(t *testing.T) {
	s := NewSettings(defaultAI())

	masked := s.Snapshot(false)
	assert.Equal(t, "***", masked[KeyOpenAIAPIKey])
	assert.Equal(t, "", masked[KeyHuggingFaceToken])
	assert.Equal(t, "30s", masked[KeyProviderTimeout])

	full := s.Snapshot(true)
	assert.Equal(t, "sk-test", full[KeyOpenAIAPIKey])
}

func TestSettings_Update(t *testing.T) {
	s := NewSettings(defaultAI())
	require.Zero(t, s.Version())

	applied, err := s.Update(map[string]any{
		KeyProvider:        "ollama",
		KeyTemperature:     "0.3",
		KeyMaxTokens:       float64(512),
		KeyUseRealAI:       "false",
		KeyProviderTimeout: float64(5),
		"custom_flag":      []any{"x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 512, applied[KeyMaxTokens])

	ai, version := s.AI()
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, "ollama", ai.Provider)
	assert.Equal(t, 0.3, ai.Temperature)
	assert.Equal(t, 512, ai.MaxTokens)
	assert.False(t, ai.UseRealAI)
	assert.Equal(t, 5*time.Second, ai.ProviderTimeout)
	assert.Equal(t, []any{"x"}, s.Snapshot(true)["custom_flag"])
}

func TestSettings_UpdateRejectsBadTypes(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"temperature text", KeyTemperature, "warm"},
		{"fractional tokens", KeyMaxTokens, 1.5},
		{"bool text", KeyUseRealAI, "maybe"},
		{"provider number", KeyProvider, float64(3)},
		{"timeout text", KeyProviderTimeout, "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings(defaultAI())

			_, err := s.Update(map[string]any{tt.key: tt.value, KeyOpenAIModel: "changed"})

			require.ErrorIs(t, err, ErrInvalidSetting)
			assert.Contains(t, err.Error(), tt.key)
			ai, version := s.AI()
			assert.Zero(t, version)
			assert.Equal(t, "gpt-3.5-turbo", ai.OpenAIModel)
		})
	}
}

func TestSettings_EmptyUpdateKeepsVersion(t *testing.T) {
	s := NewSettings(defaultAI())

	_, err := s.Update(map[string]any{})
	require.NoError(t, err)
	assert.Zero(t, s.Version())
}

func TestSettings_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ai_provider": "huggingface", "server": {"port": 1}}`), 0o600))
	s := NewSettings(defaultAI())

	applied, err := s.Reload(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{KeyProvider: "huggingface"}, applied)
	ai, _ := s.AI()
	assert.Equal(t, "huggingface", ai.Provider)
	assert.Equal(t, 1000, ai.MaxTokens)
}

func TestSettings_WatchPicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ai_provider": "openai"}`), 0o600))
	s := NewSettings(defaultAI())

	s.Watch(path, nil)

	require.NoError(t, os.WriteFile(path, []byte(`{"ai_provider": "ollama"}`), 0o600))

	require.Eventually(t, func() bool {
		ai, _ := s.AI()
		return ai.Provider == "ollama"
	}, 5*time.Second, 20*time.Millisecond)
}
