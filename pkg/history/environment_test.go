package history

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureEnvironment(t *testing.T) {
	h, _ := newTestHistory(t, "env")
	h.AddMetadata("solver", "newton")

	h.CaptureEnvironment()

	meta := h.Metadata()
	// go_version comes from the runtime, not a probe, so it is always set.
	assert.Equal(t, runtime.Version(), meta["go_version"])

	// Only the documented keys are added; probes that fail leave theirs out.
	documented := map[string]bool{
		"hostname":            true,
		"os":                  true,
		"platform":            true,
		"kernel_version":      true,
		"cpu_logical":         true,
		"cpu_physical":        true,
		"mem_total_bytes":     true,
		"mem_available_bytes": true,
		"go_version":          true,
	}
	for key := range meta {
		if key == "solver" {
			continue
		}
		assert.True(t, documented[key], "undocumented metadata key %q", key)
	}

	// Existing metadata survives the capture.
	assert.Equal(t, "newton", meta["solver"])
}

func TestCaptureEnvironmentPersists(t *testing.T) {
	h, _ := newTestHistory(t, "env-save")
	h.CaptureEnvironment()
	require.NoError(t, h.Write(Row{}))

	path := t.TempDir() + "/run"
	require.NoError(t, h.Save(path))

	snap, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, runtime.Version(), snap.Metadata["go_version"])
}
