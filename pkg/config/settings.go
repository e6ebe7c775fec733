package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Provider setting keys.
const (
	KeyProvider            = "ai_provider"
	KeyOpenAIAPIKey        = "openai_api_key"
	KeyOpenAIModel         = "openai_model"
	KeyOpenAIBaseURL       = "openai_base_url"
	KeyHuggingFaceModel    = "huggingface_model"
	KeyHuggingFaceEndpoint = "huggingface_endpoint"
	KeyHuggingFaceToken    = "huggingface_token"
	KeyOllamaEndpoint      = "ollama_endpoint"
	KeyOllamaModel         = "ollama_model"
	KeyTemperature         = "temperature"
	KeyMaxTokens           = "max_tokens"
	KeyUseRealAI           = "use_real_ai"
	KeyEnableVision        = "enable_vision"
	KeyVisionModel         = "vision_model"
	KeyProviderTimeout     = "provider_timeout"
)

// ErrInvalidSetting is wrapped by Update when a value has the wrong type.
var ErrInvalidSetting = errors.New("invalid setting")

type kind int

const (
	kindString kind = iota
	kindFloat
	kindInt
	kindBool
	kindDuration
)

func (k kind) String() string {
	switch k {
	case kindFloat:
		return "number"
	case kindInt:
		return "integer"
	case kindBool:
		return "boolean"
	case kindDuration:
		return "duration"
	default:
		return "string"
	}
}

var settingKinds = map[string]kind{
	KeyProvider:            kindString,
	KeyOpenAIAPIKey:        kindString,
	KeyOpenAIModel:         kindString,
	KeyOpenAIBaseURL:       kindString,
	KeyHuggingFaceModel:    kindString,
	KeyHuggingFaceEndpoint: kindString,
	KeyHuggingFaceToken:    kindString,
	KeyOllamaEndpoint:      kindString,
	KeyOllamaModel:         kindString,
	KeyTemperature:         kindFloat,
	KeyMaxTokens:           kindInt,
	KeyUseRealAI:           kindBool,
	KeyEnableVision:        kindBool,
	KeyVisionModel:         kindString,
	KeyProviderTimeout:     kindDuration,
}

var secretKeys = map[string]bool{
	KeyOpenAIAPIKey:     true,
	KeyHuggingFaceToken: true,
}

func DefaultSettings() map[string]any {
	return map[string]any{
		KeyProvider:            "openai",
		KeyOpenAIAPIKey:        "",
		KeyOpenAIModel:         "gpt-3.5-turbo",
		KeyOpenAIBaseURL:       "",
		KeyHuggingFaceModel:    "gpt2",
		KeyHuggingFaceEndpoint: "https://api-inference.huggingface.co/models",
		KeyHuggingFaceToken:    "",
		KeyOllamaEndpoint:      "http://localhost:11434",
		KeyOllamaModel:         "llama2",
		KeyTemperature:         0.7,
		KeyMaxTokens:           1000,
		KeyUseRealAI:           true,
		KeyEnableVision:        true,
		KeyVisionModel:         "gpt-4o-mini",
		KeyProviderTimeout:     30 * time.Second,
	}
}

// Settings is the live provider configuration. Reads take copies; every
// successful Update bumps Version so dependants can rebuild lazily.
type Settings struct {
	mu      sync.RWMutex
	values  map[string]any
	version uint64
}

func NewSettings(ai AIConfig) *Settings {
	return &Settings{values: map[string]any{
		KeyProvider:            ai.Provider,
		KeyOpenAIAPIKey:        ai.OpenAIAPIKey,
		KeyOpenAIModel:         ai.OpenAIModel,
		KeyOpenAIBaseURL:       ai.OpenAIBaseURL,
		KeyHuggingFaceModel:    ai.HuggingFaceModel,
		KeyHuggingFaceEndpoint: ai.HuggingFaceEndpoint,
		KeyHuggingFaceToken:    ai.HuggingFaceToken,
		KeyOllamaEndpoint:      ai.OllamaEndpoint,
		KeyOllamaModel:         ai.OllamaModel,
		KeyTemperature:         ai.Temperature,
		KeyMaxTokens:           ai.MaxTokens,
		KeyUseRealAI:           ai.UseRealAI,
		KeyEnableVision:        ai.EnableVision,
		KeyVisionModel:         ai.VisionModel,
		KeyProviderTimeout:     ai.ProviderTimeout,
	}}
}

func (s *Settings) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a copy of all values. Secrets are masked unless
// withSecrets is set.
func (s *Settings) Snapshot(withSecrets bool) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		if d, ok := v.(time.Duration); ok {
			v = d.String()
		}
		if secretKeys[k] && !withSecrets {
			v = mask(cast.ToString(v))
		}
		out[k] = v
	}
	return out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}

// AI returns a typed view of the current values together with the version
// it was taken at.
func (s *Settings) AI() (AIConfig, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.values
	return AIConfig{
		Provider:            cast.ToString(v[KeyProvider]),
		OpenAIAPIKey:        cast.ToString(v[KeyOpenAIAPIKey]),
		OpenAIModel:         cast.ToString(v[KeyOpenAIModel]),
		OpenAIBaseURL:       cast.ToString(v[KeyOpenAIBaseURL]),
		HuggingFaceModel:    cast.ToString(v[KeyHuggingFaceModel]),
		HuggingFaceEndpoint: cast.ToString(v[KeyHuggingFaceEndpoint]),
		HuggingFaceToken:    cast.ToString(v[KeyHuggingFaceToken]),
		OllamaEndpoint:      cast.ToString(v[KeyOllamaEndpoint]),
		OllamaModel:         cast.ToString(v[KeyOllamaModel]),
		Temperature:         cast.ToFloat64(v[KeyTemperature]),
		MaxTokens:           cast.ToInt(v[KeyMaxTokens]),
		UseRealAI:           cast.ToBool(v[KeyUseRealAI]),
		EnableVision:        cast.ToBool(v[KeyEnableVision]),
		VisionModel:         cast.ToString(v[KeyVisionModel]),
		ProviderTimeout:     cast.ToDuration(v[KeyProviderTimeout]),
	}, s.version
}

// Update applies changes atomically: either every value converts to its
// key's type and all are stored, or nothing changes. Unknown keys are kept
// verbatim. The applied (converted) values are returned.
func (s *Settings) Update(changes map[string]any) (map[string]any, error) {
	applied := make(map[string]any, len(changes))

	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := convert(key, changes[key])
		if err != nil {
			return nil, err
		}
		applied[key] = value
	}

	if len(applied) == 0 {
		return applied, nil
	}

	s.mu.Lock()
	for k, v := range applied {
		s.values[k] = v
	}
	s.version++
	s.mu.Unlock()

	return applied, nil
}

func convert(key string, value any) (any, error) {
	k, known := settingKinds[key]
	if !known {
		return value, nil
	}

	var (
		out any
		err error
	)
	switch k {
	case kindString:
		if _, ok := value.(string); !ok {
			err = fmt.Errorf("not a string")
		} else {
			out = value
		}
	case kindFloat:
		out, err = cast.ToFloat64E(value)
	case kindInt:
		if f, ok := value.(float64); ok && f != float64(int64(f)) {
			err = fmt.Errorf("not a whole number")
		} else {
			out, err = cast.ToIntE(value)
		}
	case kindBool:
		out, err = cast.ToBoolE(value)
	case kindDuration:
		out, err = toDuration(value)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a %s: %v", ErrInvalidSetting, key, k, err)
	}
	return out, nil
}

// toDuration reads a duration setting. Bare numbers, including numeric
// strings from the environment, are seconds.
func toDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case string:
		text := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return seconds(f), nil
		}
		return time.ParseDuration(text)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, err
	}
	return seconds(f), nil
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// Reload applies the provider keys found in the override file at path. It is
// used by the file watcher; keys absent from the file keep their value.
func (s *Settings) Reload(path string) (map[string]any, error) {
	values, err := readOverride(path)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	for key, value := range values {
		if _, known := settingKinds[key]; known {
			changes[key] = value
		}
	}
	return s.Update(changes)
}

// Watch reloads the override file into s whenever it changes on disk.
// onChange is called after every attempt with the applied keys or the error.
func (s *Settings) Watch(path string, onChange func(applied map[string]any, err error)) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.OnConfigChange(func(_ fsnotify.Event) {
		applied, err := s.Reload(path)
		if onChange != nil {
			onChange(applied, err)
		}
	})
	v.WatchConfig()
}
