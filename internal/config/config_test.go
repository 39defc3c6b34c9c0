package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Registry.OmitFirstLine)
	assert.Equal(t, 0, cfg.Scan.FirstInstanceNumber)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	tags, err := cfg.ComputedTags()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Modality", tags[0].Name)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dicomseries.yaml")
	content := `registry:
  path: /data/registry.csv
  omit_first_line: false
scan:
  computed_tags: [Manufacturer, slicethickness]
  first_instance_number: 1
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/registry.csv", cfg.Registry.Path)
	assert.False(t, cfg.Registry.OmitFirstLine)
	assert.Equal(t, 1, cfg.Scan.FirstInstanceNumber)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	tags, err := cfg.ComputedTags()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "SliceThickness", tags[1].Name)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "registry: [", "parse config file"},
		{"bad level", "log_level: loud\n", "invalid log_level"},
		{"bad first instance", "scan:\n  first_instance_number: 2\n", "first_instance_number"},
		{"unknown tag", "scan:\n  computed_tags: [Manufacurer]\n", "did you mean \"Manufacturer\""},
		{"instance scoped tag", "scan:\n  computed_tags: [InstanceNumber]\n", "varies within a series"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dicomseries.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dicomseries.yaml")

	cfg := Default()
	cfg.Registry.Path = "registry.csv"
	cfg.Scan.ComputedTags = []string{"PatientID"}
	cfg.LogLevel = "info"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
