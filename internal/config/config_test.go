package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/seasonplan?sslmode=disable")
	t.Setenv("SEASONPLAN_CATALOG", "stores.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8074", cfg.Addr)
	assert.Equal(t, "seasonplan.progress", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.S3Bucket)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SEASONPLAN_DATABASE_URL", "")
	t.Setenv("SEASONPLAN_CATALOG", "stores.yaml")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresCatalog(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/seasonplan")
	t.Setenv("SEASONPLAN_CATALOG", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SEASONPLAN_DATABASE_URL", "postgres://db/seasonplan")
	t.Setenv("SEASONPLAN_CATALOG", "/etc/seasonplan/stores.yaml")
	t.Setenv("SEASONPLAN_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SEASONPLAN_S3_BUCKET", "plan-archive")
	t.Setenv("SEASONPLAN_CLUSTER_COUNT", "4")
	t.Setenv("SEASONPLAN_MARKDOWN_GRANULARITY", "0.10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "plan-archive", cfg.S3Bucket)
	assert.Equal(t, 4, cfg.ClusterCount)
	assert.InDelta(t, 0.10, cfg.MarkdownGranularity, 1e-9)
}
