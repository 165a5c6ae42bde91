package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds the provider keys loaded from the environment
type APIKeys struct {
	OpenAI string
	Gemini string
}

// envPaths are tried in order; the first existing file wins
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
	"../../.env",
}

// LoadEnv loads environment variables from the first .env file found and
// returns its path. A missing file is not an error since variables may be
// set system-wide.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		return envPath, nil
	}
	return "", nil
}

// GetAPIKeys reads provider keys from the environment and rejects keys with
// an obviously wrong format
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, "OpenAI"); err != nil {
			return nil, err
		}
	}
	if apiKeys.Gemini != "" {
		if err := ValidateAPIKey(apiKeys.Gemini, "Gemini"); err != nil {
			return nil, err
		}
	}

	return apiKeys, nil
}

// Available lists the providers that have a key configured
func (k *APIKeys) Available() []string {
	var names []string
	if k.OpenAI != "" {
		names = append(names, "OpenAI")
	}
	if k.Gemini != "" {
		names = append(names, "Gemini")
	}
	return names
}

// ForProvider returns the key used by an embedding provider name
func (k *APIKeys) ForProvider(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return k.Gemini
	case "openai", "":
		return k.OpenAI
	}
	return ""
}

// GetProjectRoot finds the project root directory by looking for go.mod
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not find project root (go.mod not found)")
}
