package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedk/fwbuild/internal/model"
)

// TestLoad_SeedsMissingStore verifies first-run behavior: the file is
// created with all four keys and the returned settings are the defaults.
func TestLoad_SeedsMissingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "fwbuild.env")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.EnvFirmware, s.DefaultEnv)
	assert.Equal(t, model.TrackActive, s.DefaultTrack)
	assert.Equal(t, SeriesMajor, s.SeriesStrategy)
	assert.NotEmpty(t, s.DefaultPort)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	for _, key := range []string{KeyDefaultEnv, KeyDefaultPort, KeyDefaultTrack, KeySeriesStrategy} {
		assert.Contains(t, content, key, "seeded store must contain %s", key)
	}
}

// TestLoad_ReadsExistingStore verifies that values in the file override
// the built-in defaults.
func TestLoad_ReadsExistingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fwbuild.env")
	content := strings.Join([]string{
		"DEFAULT_ENV=W",
		"DEFAULT_PORT=/dev/ttyACM0",
		"DEFAULT_TRACK=B",
		"SERIES_STRATEGY=major",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.EnvWeb, s.DefaultEnv)
	assert.Equal(t, "/dev/ttyACM0", s.DefaultPort)
	assert.Equal(t, model.TrackBeta, s.DefaultTrack)
}

// TestLoad_PartialStore verifies that missing keys fall back to defaults.
func TestLoad_PartialStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fwbuild.env")
	require.NoError(t, os.WriteFile(path, []byte("DEFAULT_TRACK=R\n"), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.TrackRelease, s.DefaultTrack)
	assert.Equal(t, model.EnvFirmware, s.DefaultEnv)
}

// TestLoad_RejectsBadValues verifies that typos are reported instead of
// silently replaced.
func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad track", "DEFAULT_TRACK=Z\n"},
		{"bad environment", "DEFAULT_ENV=q\n"},
		{"unknown strategy", "SERIES_STRATEGY=minor\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fwbuild.env")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
