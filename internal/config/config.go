package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/congo-pay/payments-engine/internal/report"
)

const (
	defaultAppName        = "payments-engine"
	defaultAppEnv         = "development"
	defaultLogLevel       = "info"
	defaultReportFormat   = report.FormatCSV
	defaultRedisKeyPrefix = "payments-engine:snapshot"
	defaultSnapshotTTL    = 24 * time.Hour
	defaultExportTimeout  = 30 * time.Second
	defaultDotEnvFile     = ".env"

	snapshotTTLSecondsEnvVar = "SNAPSHOT_TTL_SECONDS"
	snapshotTTLDurEnvVar     = "SNAPSHOT_TTL"
	exportSecondsEnvVar      = "EXPORT_TIMEOUT_SECONDS"
	exportDurationEnvVar     = "EXPORT_TIMEOUT"
)

// Config captures runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	LogLevel       string
	ReportFormat   string
	DatabaseURL    string
	RedisURL       string
	RedisKeyPrefix string
	SnapshotTTL    time.Duration
	ExportTimeout  time.Duration
}

// Load reads an optional .env file from the working directory and then
// populates a Config from the environment. Variables already set in the
// environment take precedence over the file.
func Load() (Config, error) {
	if err := godotenv.Load(defaultDotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", defaultDotEnvFile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		ReportFormat:   strings.ToLower(getEnv("REPORT_FORMAT", defaultReportFormat)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", defaultRedisKeyPrefix),
	}

	var err error
	cfg.SnapshotTTL, err = durationFromEnv(snapshotTTLSecondsEnvVar, snapshotTTLDurEnvVar, defaultSnapshotTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.ExportTimeout, err = durationFromEnv(exportSecondsEnvVar, exportDurationEnvVar, defaultExportTimeout)
	if err != nil {
		return Config{}, err
	}

	if !report.ValidFormat(cfg.ReportFormat) {
		return Config{}, fmt.Errorf("invalid REPORT_FORMAT %q: want %s or %s", cfg.ReportFormat, report.FormatCSV, report.FormatTable)
	}

	if cfg.ExportTimeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", exportDurationEnvVar)
	}

	return cfg, nil
}

// ExportEnabled reports whether any snapshot sink is configured.
func (c Config) ExportEnabled() bool {
	return c.DatabaseURL != "" || c.RedisURL != ""
}

// durationFromEnv reads a whole-second value from secondsKey, falling back to
// a Go duration string in durationKey and then to fallback.
func durationFromEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
