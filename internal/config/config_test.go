package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-soundmap/internal/gesture"
	"github.com/joeblew999/plat-soundmap/internal/surface"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, "soundmap.yaml", `
sheet:
  url: https://script.example/exec
media:
  cloudName: zvuk
  uploadPreset: unsigned
map:
  center: [43.508, 16.44]
  zoom: 14
  basemap: topo
gesture:
  holdMs: 600
  tolerancePx: 10
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://script.example/exec", s.Sheet.URL)
	assert.Equal(t, "zvuk", s.Media.CloudName)
	assert.Equal(t, "unsigned", s.Media.UploadPreset)
	assert.Equal(t, "https://api.cloudinary.com/v1_1", s.Media.Endpoint)
	assert.Equal(t, surface.Topo, s.Basemap())
	assert.Equal(t, orb.Point{16.44, 43.508}, s.Viewport().Center)
	assert.Equal(t, 14.0, s.Viewport().Zoom)
	assert.Equal(t, gesture.Config{Hold: 600 * time.Millisecond, Tolerance: 10}, s.GestureThresholds())
}

func TestLoad_DefaultValues(t *testing.T) {
	path := writeConfig(t, "soundmap.json", `{}`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, s.Sheet.URL)
	assert.Equal(t, []float64{45.815, 15.981}, s.Map.Center)
	assert.Equal(t, 13.0, s.Map.Zoom)
	assert.Equal(t, surface.Dark, s.Basemap())
	assert.Equal(t, gesture.DefaultConfig(), s.GestureThresholds())
	assert.Equal(t, "min_ak_markers", s.Cache.Key)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 13.0, s.Map.Zoom)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOUNDMAP_SHEET_URL", "https://env.example/exec")
	path := writeConfig(t, "soundmap.yaml", "sheet:\n  url: https://file.example\n")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/exec", s.Sheet.URL)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "a.yaml", "map:\n  basemap: satellite\n"))
	assert.ErrorContains(t, err, "map.basemap")

	_, err = Load(writeConfig(t, "b.yaml", "map:\n  center: [45.8]\n"))
	assert.ErrorContains(t, err, "map.center")
}
