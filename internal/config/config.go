package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Config contains runtime configuration required by the service.
type Config struct {
	DBURL           string
	ListenAddr      string
	DispatchTimeout time.Duration
	APIKeys         map[string]string // apiKey -> operator name
}

// Load reads required values from environment variables.
// API_KEYS format: "ops1:key1,ops2:key2"
// DISPATCH_TIMEOUT is a Go duration string, e.g. "10s".
func Load() (Config, error) {
	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return Config{}, errors.New("DB_URL required")
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	// Bounds every outbound partner call; a hanging endpoint must never
	// hold a dispatch goroutine past this.
	dispatchTimeout := 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("DISPATCH_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, errors.New(`DISPATCH_TIMEOUT must be a positive duration like "10s"`)
		}
		dispatchTimeout = d
	}

	apiKeysRaw := strings.TrimSpace(os.Getenv("API_KEYS"))
	apiKeys := map[string]string{}

	if apiKeysRaw != "" {
		pairs := strings.Split(apiKeysRaw, ",")
		for _, p := range pairs {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			parts := strings.SplitN(p, ":", 2)
			if len(parts) != 2 {
				return Config{}, errors.New(`API_KEYS must be "operator:key,operator:key"`)
			}
			operator := strings.TrimSpace(parts[0])
			key := strings.TrimSpace(parts[1])
			if operator == "" || key == "" {
				return Config{}, errors.New(`API_KEYS must be "operator:key,operator:key"`)
			}
			apiKeys[key] = operator
		}
	}

	// Local dev fallback so the service runs out-of-the-box.
	if len(apiKeys) == 0 {
		apiKeys["ops-key-123"] = "ops"
	}

	return Config{
		DBURL:           dbURL,
		ListenAddr:      listenAddr,
		DispatchTimeout: dispatchTimeout,
		APIKeys:         apiKeys,
	}, nil
}
