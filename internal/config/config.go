package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL  string
	RosterPath   string // optional; the CLI arg takes precedence
	Location     *time.Location
	HTTPAddr     string
	LogLevel     string
	Env          string // dev|prod
	SentryDSN    string
	RoundCutoffs []time.Time // exclusive end boundary of each grading round
	LMSColumnIDs []string    // gradebook column ids, one per round
}

func Load() (*Config, error) {
	tz := getenv("TZ", "America/New_York")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	cutoffs, err := parseCutoffs(os.Getenv("ROUND_CUTOFFS"), loc)
	if err != nil {
		return nil, fmt.Errorf("ROUND_CUTOFFS: %w", err)
	}

	cfg := &Config{
		DatabaseURL:  mustEnv("DATABASE_URL"),
		RosterPath:   os.Getenv("ROSTER_PATH"),
		Location:     loc,
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		Env:          getenv("ENV", "dev"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),
		RoundCutoffs: cutoffs,
		LMSColumnIDs: splitList(os.Getenv("LMS_COLUMN_IDS")),
	}
	return cfg, nil
}

// parseCutoffs reads a comma-separated list of YYYY-MM-DD dates, each
// interpreted as midnight local time. Order must be ascending.
func parseCutoffs(raw string, loc *time.Location) ([]time.Time, error) {
	var out []time.Time
	for _, part := range splitList(raw) {
		t, err := time.ParseInLocation("2006-01-02", part, loc)
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", part, err)
		}
		if len(out) > 0 && !out[len(out)-1].Before(t) {
			return nil, fmt.Errorf("cutoff %q is not after the previous one", part)
		}
		out = append(out, t)
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
