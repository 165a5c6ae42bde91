package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "transcript-rag/internal/app/errors"
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidateConcurrency validates concurrency setting
func ValidateConcurrency(concurrency int, name string) error {
	if concurrency <= 0 {
		return fmt.Errorf("%s concurrency must be positive", name)
	}
	if concurrency > 100 {
		return fmt.Errorf("%s concurrency too high (max 100)", name)
	}
	return nil
}

// ValidateRetries validates retry count
func ValidateRetries(retries int, name string) error {
	if retries < 0 {
		return fmt.Errorf("%s retries cannot be negative", name)
	}
	if retries > 10 {
		return fmt.Errorf("%s retries too high (max 10)", name)
	}
	return nil
}

// ValidateAPIKey validates API key format. Keys for OpenAI-compatible servers
// other than api.openai.com should be checked with keyType "custom", which
// only requires presence.
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format: must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("invalid OpenAI API key format: too short")
		}
	case "Gemini":
		if !strings.HasPrefix(apiKey, "AIza") {
			return fmt.Errorf("invalid Gemini API key format: must start with 'AIza'")
		}
		if len(apiKey) < 30 {
			return fmt.Errorf("invalid Gemini API key format: too short")
		}
	}

	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s URL is required", name)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}
	return nil
}

// ValidatePort validates a TCP port number
func ValidatePort(port int, name string) error {
	if port <= 0 || port > 65535 {
		return apperrors.OutOfRange(name+" port", 1, 65535)
	}
	return nil
}

// ValidateChunking checks window size and overlap, both in runes
func ValidateChunking(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if overlap < 0 {
		return fmt.Errorf("chunk overlap cannot be negative")
	}
	if overlap >= size {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return nil
}

// ValidateTopK validates a result count
func ValidateTopK(k int, name string) error {
	if k <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	if k > 1000 {
		return fmt.Errorf("%s too high (max 1000)", name)
	}
	return nil
}
