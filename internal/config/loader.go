package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the EventMetrix
// core service. Language is read once here and handed to consumers
// explicitly rather than living in a package-level global.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	SessionTTL  time.Duration
	LoginDelay  time.Duration
	CORSOrigins []string
	Language    string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults; invalid values are reported together
// so operators see every problem in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:    8080,
		SQLiteDSN:   "file:eventmetrix.db?_foreign_keys=on",
		SessionTTL:  7 * 24 * time.Hour,
		LoginDelay:  500 * time.Millisecond,
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		Language:    "en",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("EVENTMETRIX_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "EVENTMETRIX_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("EVENTMETRIX_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("EVENTMETRIX_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "EVENTMETRIX_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if delayValue := strings.TrimSpace(os.Getenv("EVENTMETRIX_LOGIN_DELAY")); delayValue != "" {
		delay, err := time.ParseDuration(delayValue)
		if err != nil || delay < 0 {
			invalid = append(invalid, "EVENTMETRIX_LOGIN_DELAY")
		} else {
			cfg.LoginDelay = delay
		}
	}

	if origins := strings.TrimSpace(os.Getenv("EVENTMETRIX_CORS_ORIGINS")); origins != "" {
		parts := strings.Split(origins, ",")
		cleaned := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			cfg.CORSOrigins = cleaned
		}
	}

	if lang := strings.TrimSpace(os.Getenv("EVENTMETRIX_LANGUAGE")); lang != "" {
		if lang != "en" && lang != "es" {
			invalid = append(invalid, "EVENTMETRIX_LANGUAGE")
		} else {
			cfg.Language = lang
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
