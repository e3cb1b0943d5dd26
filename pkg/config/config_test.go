package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New("run")

	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Columns.IncludeIter)
	assert.True(t, cfg.Columns.IncludeTime)
	assert.Equal(t, CompressionZstd, cfg.Snapshot.Compression)
	assert.Equal(t, os.Stdout, cfg.Output.Writer)
	assert.False(t, cfg.Observability.EnableMetrics)
}

func TestValidate(t *testing.T) {
	cfg := New("")
	require.Error(t, cfg.Validate())

	cfg = New("run")
	cfg.Snapshot.Compression = "lzma"
	require.Error(t, cfg.Validate())

	cfg.Snapshot.Compression = CompressionNone
	require.NoError(t, cfg.Validate())
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
name: newton-solve
columns:
  include_iter: true
  include_time: false
snapshot:
  compression: none
observability:
  enable_metrics: true
`)

	cfg, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "newton-solve", cfg.Name)
	assert.True(t, cfg.Columns.IncludeIter)
	assert.False(t, cfg.Columns.IncludeTime)
	assert.Equal(t, CompressionNone, cfg.Snapshot.Compression)
	assert.True(t, cfg.Observability.EnableMetrics)
	assert.NotNil(t, cfg.Output.Writer)
}

func TestFromYAMLInvalid(t *testing.T) {
	_, err := FromYAML([]byte("name: [broken"))
	require.Error(t, err)

	_, err = FromYAML([]byte("columns: {include_iter: true}"))
	require.Error(t, err, "missing name must fail validation")
}
