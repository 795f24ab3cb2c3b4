package navigation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePresetYAML = `
tuning:
  rotateSpeed: 0.01
  tourDwellMs: 1500
presets:
  - name: lobby
    x: 1
    y: 1.6
    z: 2
    yaw: 3.14
  - name: roof
    x: 0
    y: 15
    z: 0
    pitch: -1.57
    floorPlan: true
`

func writePresetFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "walkthrough.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadPresetFile(t *testing.T) {
	f, err := LoadPresetFile(writePresetFile(t, samplePresetYAML))
	require.NoError(t, err)

	locs := f.Locations()
	require.Len(t, locs, 2)
	assert.Equal(t, "lobby", locs[0].Name)
	assert.Equal(t, ModeFirstPerson, locs[0].Mode)
	assert.Equal(t, float32(1.6), locs[0].Position.Y())
	assert.Equal(t, "roof", locs[1].Name)
	assert.Equal(t, ModeFloorPlan, locs[1].Mode)
}

func TestPresetFileOptionsLayerOverDefaults(t *testing.T) {
	f, err := LoadPresetFile(writePresetFile(t, samplePresetYAML))
	require.NoError(t, err)

	n := NewNavigator(f.Options(DefaultTuning())...).(*navigator)

	assert.Equal(t, float32(0.01), n.tuning.RotateSpeed)
	assert.Equal(t, 1500*time.Millisecond, n.tuning.TourDwell)
	// Fields the file leaves unset keep their defaults.
	assert.Equal(t, DefaultTuning().CollisionOffset, n.tuning.CollisionOffset)
	assert.Equal(t, DefaultTuning().LiveRate, n.tuning.LiveRate)

	// The navigator starts at the file's first preset.
	assert.Equal(t, "lobby", n.presets[0].Name)
	assert.Equal(t, float32(2), n.Viewpoint().Position.Z())
}

func TestLoadPresetFileMissing(t *testing.T) {
	_, err := LoadPresetFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadPresetFileMalformed(t *testing.T) {
	_, err := LoadPresetFile(writePresetFile(t, "presets: [not: valid: yaml"))
	assert.Error(t, err)
}

func TestLoadPresetFileEmpty(t *testing.T) {
	_, err := LoadPresetFile(writePresetFile(t, "tuning:\n  rotateSpeed: 0.01\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no presets")
}

func TestLoadPresetFileUnnamedPreset(t *testing.T) {
	_, err := LoadPresetFile(writePresetFile(t, "presets:\n  - x: 1\n    y: 2\n    z: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no name")
}

func TestDefaultPresetsAreWellFormed(t *testing.T) {
	presets := DefaultPresets()
	require.NotEmpty(t, presets)

	seen := map[string]bool{}
	for _, p := range presets {
		assert.NotEmpty(t, p.Name)
		assert.False(t, seen[p.Name], "preset names must be unique")
		seen[p.Name] = true
	}
}
