package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the server and the terminal client.
type Config struct {
	Port    string
	Log     LogConfig
	Metrics MetricsConfig
	Search  SearchConfig
	Remote  RemoteConfig
	Storage StorageConfig
	Sync    SyncConfig
	Product ProductConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port: envOrDefault(envPort, defaultPort),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
		Metrics: loadMetrics(),
		Search:  loadSearch(),
		Remote:  loadRemote(),
		Storage: loadStorage(),
		Sync:    loadSync(),
		Product: loadProduct(),
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) without overriding ones already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func oneOf(raw, fallback string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}
