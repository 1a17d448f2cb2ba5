package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Telegram  TelegramConfig
	Vision    VisionConfig
	Search    SearchConfig
	Bot       BotConfig
	Shortener ShortenerConfig
}

// TelegramConfig holds chat-platform credentials
type TelegramConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
}

// VisionConfig holds the vision-model API configuration.
// Any OpenAI-compatible chat-completions endpoint works.
type VisionConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SearchConfig holds the Amazon search backend configuration
type SearchConfig struct {
	RapidAPIKey  string        `mapstructure:"rapidapi_key"`
	Host         string        `mapstructure:"host"`
	Country      string        `mapstructure:"country"`
	Marketplace  string        `mapstructure:"marketplace"`
	AssociateTag string        `mapstructure:"associate_tag"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// BotConfig holds bot behaviour tunables
type BotConfig struct {
	ResultsPerPage        int     `mapstructure:"results_per_page"`
	MaxResults            int     `mapstructure:"max_results"`
	FreeDeliveryThreshold float64 `mapstructure:"free_delivery_threshold"`
}

// ShortenerConfig holds the self-hosted URL shortener configuration.
// Leave BaseURL empty to disable shortening (buttons use full affiliate URLs).
type ShortenerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	Port    string `mapstructure:"port"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/photobot/")

	// Environment variable settings
	v.SetEnvPrefix("PHOTOBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows from defaults or a
	// config file, so Unmarshal would miss env-only settings such as the
	// credentials. Bind every key explicitly.
	for _, key := range []string{
		"telegram.token", "telegram.debug",
		"vision.api_key", "vision.base_url", "vision.model", "vision.timeout",
		"search.rapidapi_key", "search.host", "search.country",
		"search.marketplace", "search.associate_tag", "search.timeout",
		"bot.results_per_page", "bot.max_results", "bot.free_delivery_threshold",
		"shortener.enabled", "shortener.base_url", "shortener.port",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Vision defaults
	v.SetDefault("vision.base_url", "https://api.openai.com/v1")
	v.SetDefault("vision.model", "gpt-4o-mini")
	v.SetDefault("vision.timeout", "45s")

	// Search defaults
	v.SetDefault("search.host", "real-time-amazon-data.p.rapidapi.com")
	v.SetDefault("search.country", "US")
	v.SetDefault("search.marketplace", "www.amazon.com")
	v.SetDefault("search.timeout", "15s")

	// Bot defaults
	v.SetDefault("bot.results_per_page", 5)
	v.SetDefault("bot.max_results", 20)
	v.SetDefault("bot.free_delivery_threshold", 49)

	// Shortener defaults
	v.SetDefault("shortener.enabled", false)
	v.SetDefault("shortener.port", "8080")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Telegram.Token == "" {
		return fmt.Errorf("Telegram bot token is required (set PHOTOBOT_TELEGRAM_TOKEN)")
	}

	if config.Vision.APIKey == "" {
		return fmt.Errorf("vision API key is required (set PHOTOBOT_VISION_API_KEY)")
	}

	if config.Search.RapidAPIKey == "" {
		return fmt.Errorf("search API key is required (set PHOTOBOT_SEARCH_RAPIDAPI_KEY)")
	}

	if config.Bot.ResultsPerPage <= 0 {
		return fmt.Errorf("results_per_page must be positive, got: %d", config.Bot.ResultsPerPage)
	}

	if config.Bot.MaxResults < config.Bot.ResultsPerPage {
		return fmt.Errorf("max_results (%d) must be at least results_per_page (%d)",
			config.Bot.MaxResults, config.Bot.ResultsPerPage)
	}

	if config.Shortener.Enabled && config.Shortener.BaseURL == "" {
		return fmt.Errorf("shortener base URL is required when the shortener is enabled")
	}

	return nil
}
