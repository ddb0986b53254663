package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedk/fwbuild/internal/model"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0644))
}

// TestLoad_Missing verifies that an absent manifest is not an error.
func TestLoad_Missing(t *testing.T) {
	m, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, m)
}

// TestLoad_WithComments verifies JSONC parsing: comments and trailing
// commas must be tolerated.
func TestLoad_WithComments(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
  // the vendor script wraps idf.py and handles partition tables
  "buildCommand": ["./tools/fwtool.sh", "--project", "sensor-node"],
  "port": "/dev/ttyACM0", // left plugged into the bench unit
  "environments": ["F", "T"],
}`)

	m, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, []string{"./tools/fwtool.sh", "--project", "sensor-node"}, m.BuildCommand)
	assert.Equal(t, "/dev/ttyACM0", m.Port)
	assert.Equal(t, []string{"F", "T"}, m.Environments)
}

// TestLoad_InvalidEnvironment verifies manifest validation.
func TestLoad_InvalidEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"environments": ["F", "Z"]}`)

	_, err := Load(dir)
	assert.Error(t, err)
}

// TestLoad_MalformedJSON verifies parse errors are surfaced with the path.
func TestLoad_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"buildCommand": [`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ManifestName)
}

// TestAllowsEnv covers the environment narrowing rules, including the
// nil-manifest and empty-list cases.
func TestAllowsEnv(t *testing.T) {
	var nilManifest *Manifest
	assert.True(t, nilManifest.AllowsEnv(model.EnvFirmware))

	open := &Manifest{}
	assert.True(t, open.AllowsEnv(model.EnvWeb))

	narrow := &Manifest{Environments: []string{"F", "T"}}
	assert.True(t, narrow.AllowsEnv(model.EnvFirmware))
	assert.True(t, narrow.AllowsEnv(model.EnvTools))
	assert.False(t, narrow.AllowsEnv(model.EnvWeb))
}
