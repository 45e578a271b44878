// Package config is the environment-backed configuration loader for the
// season planning service (cmd/season-planner-service/main.go).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the runtime values main.go needs to wire the service.
type Config struct {
	Addr        string
	DatabaseURL string

	// Kafka progress events; empty Brokers disables the emitter.
	KafkaBrokers []string
	KafkaTopic   string

	// S3 plan archive; empty Bucket disables archival.
	S3Bucket string
	S3Prefix string

	// Store catalog file consumed by the clustering step.
	CatalogPath string

	ClusterCount        int
	MaxReforecasts      int
	MarkdownGranularity float64
}

const (
	defaultAddr       = ":8074"
	defaultKafkaTopic = "seasonplan.progress"
	defaultS3Prefix   = "seasonplan"
)

// Load reads the environment. DATABASE_URL and SEASONPLAN_CATALOG are
// required; everything else has a default or degrades to disabled.
func Load() (Config, error) {
	cfg := Config{
		Addr:                getEnv("SEASONPLAN_ADDR", defaultAddr),
		DatabaseURL:         firstNonEmpty(os.Getenv("SEASONPLAN_DATABASE_URL"), os.Getenv("DATABASE_URL")),
		KafkaBrokers:        splitList(os.Getenv("SEASONPLAN_KAFKA_BROKERS")),
		KafkaTopic:          getEnv("SEASONPLAN_KAFKA_TOPIC", defaultKafkaTopic),
		S3Bucket:            os.Getenv("SEASONPLAN_S3_BUCKET"),
		S3Prefix:            getEnv("SEASONPLAN_S3_PREFIX", defaultS3Prefix),
		CatalogPath:         os.Getenv("SEASONPLAN_CATALOG"),
		ClusterCount:        getInt("SEASONPLAN_CLUSTER_COUNT", 0),
		MaxReforecasts:      getInt("SEASONPLAN_MAX_REFORECASTS", 0),
		MarkdownGranularity: getFloat("SEASONPLAN_MARKDOWN_GRANULARITY", 0),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL or SEASONPLAN_DATABASE_URL required")
	}
	if cfg.CatalogPath == "" {
		return Config{}, fmt.Errorf("SEASONPLAN_CATALOG required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
