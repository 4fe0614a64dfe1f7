package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned by Validate when a required API key is unset.
var ErrMissingCredentials = errors.New("missing API configuration")

const (
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
)

type Config struct {
	Port        string
	GinMode     string
	FrontendURL string

	LogLevel  string
	LogFormat string

	Generation GenerationConfig
	Flights    FlightConfig
	Database   DatabaseConfig
	Redis      RedisConfig
}

type GenerationConfig struct {
	Provider       string
	GeminiAPIKey   string
	GeminiModel    string
	HuggingFaceKey string
	HFModel        string
	Timeout        time.Duration
}

// APIKey returns the credential of the selected provider.
func (g GenerationConfig) APIKey() string {
	if g.Provider == ProviderHuggingFace {
		return g.HuggingFaceKey
	}
	return g.GeminiAPIKey
}

func (g GenerationConfig) keyName() string {
	if g.Provider == ProviderHuggingFace {
		return "HUGGINGFACE_API_KEY"
	}
	return "GOOGLE_GENERATIVE_AI_API_KEY"
}

type FlightConfig struct {
	RapidAPIKey   string
	Host          string
	BaseURL       string
	Currency      string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
}

type DatabaseConfig struct {
	URL string
}

// Enabled reports whether the plan archive should be opened.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether the flight cache should be used.
func (r RedisConfig) Enabled() bool { return r.Address != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LLM_PROVIDER", ProviderGemini)
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.3")
	v.SetDefault("GENERATION_TIMEOUT", "60s")

	v.SetDefault("FLIGHT_API_HOST", "booking-com15.p.rapidapi.com")
	v.SetDefault("FLIGHT_API_BASE_URL", "https://booking-com15.p.rapidapi.com")
	v.SetDefault("FLIGHT_CURRENCY", "INR")
	v.SetDefault("FLIGHT_TIMEOUT", "20s")
	v.SetDefault("FLIGHT_RATE_PER_SECOND", 5)
	v.SetDefault("FLIGHT_RATE_BURST", 1)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FLIGHT_CACHE_TTL", "15m")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	provider := strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER")))
	if provider != ProviderGemini && provider != ProviderHuggingFace {
		return nil, fmt.Errorf("config: unknown LLM_PROVIDER %q", provider)
	}

	cfg := &Config{
		Port:        v.GetString("PORT"),
		GinMode:     v.GetString("GIN_MODE"),
		FrontendURL: v.GetString("FRONTEND_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		Generation: GenerationConfig{
			Provider:       provider,
			GeminiAPIKey:   strings.TrimSpace(v.GetString("GOOGLE_GENERATIVE_AI_API_KEY")),
			GeminiModel:    v.GetString("GEMINI_MODEL"),
			HuggingFaceKey: strings.TrimSpace(v.GetString("HUGGINGFACE_API_KEY")),
			HFModel:        v.GetString("HF_MODEL"),
			Timeout:        v.GetDuration("GENERATION_TIMEOUT"),
		},
		Flights: FlightConfig{
			RapidAPIKey:   strings.TrimSpace(v.GetString("RAPIDAPI_KEY")),
			Host:          v.GetString("FLIGHT_API_HOST"),
			BaseURL:       strings.TrimRight(v.GetString("FLIGHT_API_BASE_URL"), "/"),
			Currency:      strings.ToUpper(v.GetString("FLIGHT_CURRENCY")),
			Timeout:       v.GetDuration("FLIGHT_TIMEOUT"),
			RatePerSecond: v.GetFloat64("FLIGHT_RATE_PER_SECOND"),
			RateBurst:     v.GetInt("FLIGHT_RATE_BURST"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("FLIGHT_CACHE_TTL"),
		},
	}

	if cfg.Generation.Timeout <= 0 {
		return nil, fmt.Errorf("config: GENERATION_TIMEOUT must be positive")
	}
	if cfg.Flights.Timeout <= 0 {
		return nil, fmt.Errorf("config: FLIGHT_TIMEOUT must be positive")
	}
	if cfg.Flights.RatePerSecond <= 0 || cfg.Flights.RateBurst < 1 {
		return nil, fmt.Errorf("config: flight rate limit must be positive")
	}

	return cfg, nil
}

// MissingCredentials lists the required API keys that are not set.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Generation.APIKey() == "" {
		missing = append(missing, c.Generation.keyName())
	}
	if c.Flights.RapidAPIKey == "" {
		missing = append(missing, "RAPIDAPI_KEY")
	}
	return missing
}

// Validate returns ErrMissingCredentials when any required key is unset.
func (c *Config) Validate() error {
	if missing := c.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}
