package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local and .env from the working directory.
// OS env vars always win, .env.local wins over .env.
// Returns list of files actually loaded.
func LoadDotEnv() []string {
	return LoadDotEnvFrom(".")
}

// LoadDotEnvFrom is LoadDotEnv rooted at dir
func LoadDotEnvFrom(dir string) []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		path := filepath.Join(dir, f)
		if _, err := os.Stat(path); err == nil {
			loaded = append(loaded, path)
		}
	}
	if len(loaded) > 0 {
		// godotenv.Load never overwrites variables that are already set
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
