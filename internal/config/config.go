package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Recommender RecommenderConfig `mapstructure:"recommender"`
	Images      ImagesConfig      `mapstructure:"images"`
	Pacer       PacerConfig       `mapstructure:"pacer"`
	Chat        ChatConfig        `mapstructure:"chat"`
	Session     SessionConfig     `mapstructure:"session"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// RecommenderConfig points at the recommendation backend. Timeout bounds
// every outbound request; the backend itself sets no deadline.
type RecommenderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ImagesConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	PosterSize   string `mapstructure:"poster_size"`
	BackdropSize string `mapstructure:"backdrop_size"`
}

type PacerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type ChatConfig struct {
	ResultLimit int `mapstructure:"result_limit"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CHAT")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("recommender.timeout", 30*time.Second)
	viper.SetDefault("images.base_url", "https://image.tmdb.org/t/p")
	viper.SetDefault("images.poster_size", "w500")
	viper.SetDefault("images.backdrop_size", "original")
	viper.SetDefault("pacer.interval", 50*time.Millisecond)
	viper.SetDefault("chat.result_limit", 10)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Config file wins; fall back to the environment for the backend key.
	if cfg.Recommender.APIKey == "" {
		if apiKey := os.Getenv("RECOMMENDER_API_KEY"); apiKey != "" {
			cfg.Recommender.APIKey = apiKey
		}
	}

	return cfg, nil
}

func Get() *Config {
	return cfg
}
