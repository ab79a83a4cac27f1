// Package config centralises configuration parsing for the activity filter.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultInputPath  = "wearable_sensor_data.csv"
	DefaultOutputPath = "running_only.csv"
)

// Config captures runtime configuration values for a filter run.
type Config struct {
	InputPath    string
	OutputPath   string
	MetricsFile  string   // Prometheus textfile written after the run; empty disables it.
	KafkaBrokers []string // Publishing is enabled when brokers and topic are both set.
	KafkaTopic   string
	LogLevel     string
}

// Load reads environment variables into Config, applying defaults for local runs.
// A .env file in the working directory is honoured when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		InputPath:    getEnv("ACTIVITY_FILTER_INPUT", DefaultInputPath),
		OutputPath:   getEnv("ACTIVITY_FILTER_OUTPUT", DefaultOutputPath),
		MetricsFile:  getEnv("ACTIVITY_FILTER_METRICS_FILE", ""),
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("ACTIVITY_FILTER_KAFKA_TOPIC", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// PublishEnabled reports whether retained records should be sent to Kafka.
func (c Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
