package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  host: 0.0.0.0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Backend)
	assert.Equal(t, "memory", cfg.Vector.Backend)
	assert.Equal(t, EmbeddingDimension, cfg.Vector.Dimensions)
	assert.Equal(t, "cosine", cfg.Vector.Metric)
	assert.Equal(t, "medical_conversations", cfg.Vector.Collection)
	assert.Equal(t, 4, cfg.Ingestion.MaxWorkers)
	assert.Equal(t, 1.0, cfg.Diarization.MinSegmentSeconds)
	assert.Equal(t, 0.55, cfg.Diarization.FuzzyThreshold)
	assert.Equal(t, 10, cfg.Retrieval.MaxResults)
	assert.Equal(t, 0.6, cfg.Retrieval.MinScore)
	assert.Equal(t, "clinicrag", cfg.OTel.ServiceName)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
vector:
  backend: qdrant
  dsn: "http://localhost:6334"
  dimensions: 768
ingestion:
  max_workers: 8
retrieval:
  min_score: 0.75
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.Vector.Backend)
	assert.Equal(t, 768, cfg.Vector.Dimensions)
	assert.Equal(t, 8, cfg.Ingestion.MaxWorkers)
	assert.Equal(t, 0.75, cfg.Retrieval.MinScore)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
