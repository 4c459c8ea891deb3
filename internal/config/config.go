// internal/config/config.go
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries need from the environment.
type Config struct {
	Port         string
	DataDir      string
	DatabaseURL  string
	ActivityLog  string
	OTLPEndpoint string
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local development.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:         getenv("PORT", "8080"),
		DataDir:      getenv("DATA_DIR", "data"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ActivityLog:  getenv("ACTIVITY_LOG", "data/activity.log"),
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
