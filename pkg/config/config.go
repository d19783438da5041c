// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting for the API process.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Geocoder GeocoderConfig
	Route    RouteConfig
}

type ServerConfig struct {
	Port               string
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the Postgres connection string for pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// GeminiConfig configures the narrative generator. An empty APIKey switches
// the narrative service into fallback-only mode.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeocoderConfig configures the reverse-geocoding proxy. An empty APIKey
// disables the endpoint.
type GeocoderConfig struct {
	APIKey  string
	Timeout time.Duration
}

// RouteConfig bounds route construction.
type RouteConfig struct {
	MaxStops          int
	DefaultStops      int
	MaxSearchRadiusKm float64
}

// Load reads configuration from environment variables, applying defaults for
// everything except the database credentials.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8001"),
			AllowedOrigins:     []string{getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000")},
			RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 100),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "heritage_routes"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout: getEnvDuration("GEMINI_TIMEOUT", 25*time.Second),
		},
		Geocoder: GeocoderConfig{
			APIKey:  os.Getenv("YANDEX_GEOCODER_API_KEY"),
			Timeout: getEnvDuration("GEOCODER_TIMEOUT", 10*time.Second),
		},
		Route: RouteConfig{
			MaxStops:          getEnvInt("MAX_ROUTE_OBJECTS", 20),
			DefaultStops:      getEnvInt("DEFAULT_ROUTE_OBJECTS", 5),
			MaxSearchRadiusKm: getEnvFloat("MAX_SEARCH_RADIUS_KM", 5),
		},
	}

	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	if cfg.Route.MaxStops < 1 {
		return nil, fmt.Errorf("MAX_ROUTE_OBJECTS must be at least 1, got %d", cfg.Route.MaxStops)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
