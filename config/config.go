package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	MongoURL       string
	MongoDatabase  string
	AllowedOrigins []string
	Debug          bool
}

// Load reads configuration from the environment, with an optional .env
// file for local development. MONGO_URL may be empty: the server then
// falls back to the in-memory store.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getEnv("PORT", "3001"),
		MongoURL:       os.Getenv("MONGO_URL"),
		MongoDatabase:  getEnv("MONGO_DB", "ito"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		Debug:          os.Getenv("DEBUG") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
