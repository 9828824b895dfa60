// package config provides the environment-backed configuration loader
// used by the intake service bootstrap (cmd/intake-service/main.go).
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

type Config struct {
	Addr        string // INTAKE_ADDR (default :8080)
	DatabaseURL string // DATABASE_URL

	// Provider credentials are harvested from every PROVIDER_API_KEY*
	// variable, in variable-name order, and filtered through the
	// denylist before the pool is built.
	ProviderAPIKeys  []string
	ProviderDenylist []string      // PROVIDER_KEY_DENYLIST (comma-separated prefixes)
	ProviderBaseURL  string        // PROVIDER_BASE_URL
	ProviderModel    string        // PROVIDER_MODEL
	ProviderTimeout  time.Duration // PROVIDER_TIMEOUT (default 30s)

	KafkaBrokers []string // KAFKA_BROKERS (comma-separated; empty disables events)
	KafkaTopic   string   // KAFKA_NOTIFICATION_TOPIC (default notifications)
}

const (
	defaultAddr            = ":8080"
	defaultProviderBaseURL = "https://generativelanguage.googleapis.com"
	defaultProviderTimeout = 30 * time.Second
	defaultKafkaTopic      = "notifications"
	apiKeyEnvPrefix        = "PROVIDER_API_KEY"
)

func Load() (Config, error) {
	cfg := Config{
		Addr:             getEnv("INTAKE_ADDR", defaultAddr),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ProviderAPIKeys:  harvestAPIKeys(os.Environ()),
		ProviderDenylist: splitList(os.Getenv("PROVIDER_KEY_DENYLIST")),
		ProviderBaseURL:  getEnv("PROVIDER_BASE_URL", defaultProviderBaseURL),
		ProviderModel:    os.Getenv("PROVIDER_MODEL"),
		ProviderTimeout:  getDuration("PROVIDER_TIMEOUT", defaultProviderTimeout),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       getEnv("KAFKA_NOTIFICATION_TOPIC", defaultKafkaTopic),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL required")
	}
	return cfg, nil
}

// harvestAPIKeys collects every PROVIDER_API_KEY* value from the given
// environ slice. Sorting by variable name keeps the pool order
// deterministic across restarts (PROVIDER_API_KEY, PROVIDER_API_KEY_1,
// PROVIDER_API_KEY_2, ...).
func harvestAPIKeys(environ []string) []string {
	type entry struct{ name, value string }
	var entries []entry
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, apiKeyEnvPrefix) {
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		entries = append(entries, entry{name: name, value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.value)
	}
	return keys
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
