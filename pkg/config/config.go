package config

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Library  LibraryConfig  `mapstructure:"library"`
	Images   ImagesConfig   `mapstructure:"images"`
	AI       AIConfig       `mapstructure:",squash"`

	// OverrideFile is the JSON file whose values won over the environment,
	// empty when none was found.
	OverrideFile string `mapstructure:"-"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LibraryConfig selects the creator library backend: file, postgres or memory.
type LibraryConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type ImagesConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// AIConfig holds the provider settings. Keys are flat so that the override
// file and the update endpoint share one namespace.
type AIConfig struct {
	Provider            string        `mapstructure:"ai_provider"`
	OpenAIAPIKey        string        `mapstructure:"openai_api_key"`
	OpenAIModel         string        `mapstructure:"openai_model"`
	OpenAIBaseURL       string        `mapstructure:"openai_base_url"`
	HuggingFaceModel    string        `mapstructure:"huggingface_model"`
	HuggingFaceEndpoint string        `mapstructure:"huggingface_endpoint"`
	HuggingFaceToken    string        `mapstructure:"huggingface_token"`
	OllamaEndpoint      string        `mapstructure:"ollama_endpoint"`
	OllamaModel         string        `mapstructure:"ollama_model"`
	Temperature         float64       `mapstructure:"temperature"`
	MaxTokens           int           `mapstructure:"max_tokens"`
	UseRealAI           bool          `mapstructure:"use_real_ai"`
	EnableVision        bool          `mapstructure:"enable_vision"`
	VisionModel         string        `mapstructure:"vision_model"`
	ProviderTimeout     time.Duration `mapstructure:"provider_timeout"`
}

// DefaultOverrideFile is read from the working directory when no --config
// flag is given.
const DefaultOverrideFile = "config.json"

var envBindings = map[string]string{
	KeyProvider:            "AI_PROVIDER",
	KeyOpenAIAPIKey:        "OPENAI_API_KEY",
	KeyOpenAIModel:         "OPENAI_MODEL",
	KeyOpenAIBaseURL:       "OPENAI_BASE_URL",
	KeyHuggingFaceModel:    "HF_MODEL",
	KeyHuggingFaceEndpoint: "HF_ENDPOINT",
	KeyHuggingFaceToken:    "HF_TOKEN",
	KeyOllamaEndpoint:      "OLLAMA_ENDPOINT",
	KeyOllamaModel:         "OLLAMA_MODEL",
	KeyTemperature:         "AI_TEMPERATURE",
	KeyMaxTokens:           "AI_MAX_TOKENS",
	KeyUseRealAI:           "USE_REAL_AI",
	KeyEnableVision:        "ENABLE_VISION",
	KeyVisionModel:         "VISION_MODEL",
	KeyProviderTimeout:     "PROVIDER_TIMEOUT",
	"server.port":          "PORT",
	"server.debug":         "DEBUG",
	"telegram.token":       "TELEGRAM_TOKEN",
	"library.backend":      "LIBRARY_BACKEND",
	"library.path":         "LIBRARY_PATH",
	"images.dir":           "UPLOAD_DIR",
	"images.max_size_mb":   "MAX_IMAGE_SIZE_MB",
	"database_url":         "DATABASE_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("library.backend", "file")
	v.SetDefault("library.path", "creator_library.json")
	v.SetDefault("images.dir", "uploads")
	v.SetDefault("images.max_size_mb", 10)

	for key, value := range DefaultSettings() {
		v.SetDefault(key, value)
	}
}

// RegisterFlags adds the command-line flags understood by LoadConfig.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a JSON override file (default ./config.json when present)")
	fs.Int("port", 5000, "HTTP listen port")
	fs.Bool("debug", false, "enable debug logging and detailed error messages")
}

// LoadConfig resolves configuration from defaults, environment variables,
// the JSON override file and flags, in increasing order of precedence.
// fs may be nil. An explicitly requested override file that cannot be read
// is an error; a missing default one is not.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	path, explicit := DefaultOverrideFile, false
	if fs != nil {
		if p, _ := fs.GetString("config"); p != "" {
			path, explicit = p, true
		}
	}

	override, err := readOverride(path)
	switch {
	case err != nil && explicit:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	case err != nil:
		path = ""
	default:
		for key, value := range override {
			v.Set(key, value)
		}
	}

	if fs != nil {
		if f := fs.Lookup("port"); f != nil && f.Changed {
			v.Set("server.port", f.Value.String())
		}
		if f := fs.Lookup("debug"); f != nil && f.Changed {
			v.Set("server.debug", f.Value.String())
		}
	}

	var config Config
	if err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHook,
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	config.OverrideFile = path

	if dbURL := v.GetString("database_url"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	return &config, nil
}

// durationHook decodes durations the same way Settings.Update does, so a
// value means the same thing at startup and after a reload.
func durationHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	return toDuration(data)
}

// readOverride reads a JSON file into a map keyed by dotted paths, so a
// nested "server" section only replaces the fields it names.
func readOverride(path string) (map[string]any, error) {
	fv := viper.New()
	fv.SetConfigFile(path)
	fv.SetConfigType("json")
	if err := fv.ReadInConfig(); err != nil {
		return nil, err
	}

	values := make(map[string]any)
	for _, key := range fv.AllKeys() {
		values[key] = fv.Get(key)
	}
	return values, nil
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return DatabaseConfig{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}
