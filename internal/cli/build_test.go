package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedk/fwbuild/internal/config"
	"github.com/embedk/fwbuild/internal/history"
	"github.com/embedk/fwbuild/internal/model"
	"github.com/embedk/fwbuild/internal/project"
	"github.com/embedk/fwbuild/internal/toolchain"
	"github.com/embedk/fwbuild/internal/ui"
)

// inputPrompter answers Input calls by substring match on the prompt
// and records what was asked. Confirm always takes the default.
type inputPrompter struct {
	answers map[string]string
	asked   []string
}

func (p *inputPrompter) Confirm(question string, def bool) bool { return def }

func (p *inputPrompter) Input(prompt, def string) string {
	p.asked = append(p.asked, prompt)
	for substr, answer := range p.answers {
		if substr != "" && strings.Contains(prompt, substr) {
			return answer
		}
	}
	return def
}

func testSettings() config.Settings {
	return config.Settings{
		DefaultEnv:     model.EnvFirmware,
		DefaultPort:    "/dev/ttyUSB0",
		DefaultTrack:   model.TrackActive,
		SeriesStrategy: config.SeriesMajor,
	}
}

func lastRecord(tag string) history.Record {
	return history.Record{Timestamp: time.Now(), Tag: tag, Commit: "abc123"}
}

func TestResolveFacets_FlagsWin(t *testing.T) {
	flags := &buildFlags{
		track:     "B",
		version:   "7.2",
		env:       "W",
		stability: "e",
		change:    "~",
		parent:    "A9.1[F|s|+]",
	}

	facets, err := resolveFacets(flags, testSettings(), nil,
		lastRecord("A10.3[F|t|+]"), true, ui.Auto{})
	require.NoError(t, err)

	assert.Equal(t, model.TrackBeta, facets.Track)
	assert.Equal(t, model.Version{Major: 7, Minor: 2}, facets.Version)
	assert.Equal(t, model.EnvWeb, facets.Env)
	assert.Equal(t, model.StabilityExperimental, facets.Stability)
	assert.Equal(t, model.ChangeFix, facets.Change)
	assert.Equal(t, "A9.1[F|s|+]", facets.Parent)
}

// TestResolveFacets_AutoDefaults verifies the fully non-interactive
// path: settings defaults for track and env, suggested version from the
// previous build, last tag as parent.
func TestResolveFacets_AutoDefaults(t *testing.T) {
	flags := &buildFlags{suggest: true, autoParent: true}

	facets, err := resolveFacets(flags, testSettings(), nil,
		lastRecord("A10.3[F|t|+]"), true, ui.Auto{})
	require.NoError(t, err)

	assert.Equal(t, model.TrackActive, facets.Track)
	assert.Equal(t, model.Version{Major: 10, Minor: 4}, facets.Version)
	assert.Equal(t, model.EnvFirmware, facets.Env)
	assert.Equal(t, model.StabilityTest, facets.Stability)
	assert.Equal(t, model.ChangeFeature, facets.Change)
	assert.Equal(t, "A10.3[F|t|+]", facets.Parent)
}

// TestResolveFacets_NoHistory verifies the first-build fallback version.
func TestResolveFacets_NoHistory(t *testing.T) {
	flags := &buildFlags{suggest: true, autoParent: true}

	facets, err := resolveFacets(flags, testSettings(), nil,
		history.Record{}, false, ui.Auto{})
	require.NoError(t, err)

	assert.Equal(t, model.Version{Major: 1, Minor: 0}, facets.Version)
	assert.Empty(t, facets.Parent)
}

// TestResolveFacets_Prompted verifies prompt answers flow into facets
// and that only the missing facets are asked for.
func TestResolveFacets_Prompted(t *testing.T) {
	flags := &buildFlags{track: "A", env: "F"}
	prompt := &inputPrompter{answers: map[string]string{
		"version":   "11.0",
		"stability": "d",
		"change":    "!",
		"parent":    "A10.3[F|t|+]",
	}}

	facets, err := resolveFacets(flags, testSettings(), nil,
		history.Record{}, false, prompt)
	require.NoError(t, err)

	assert.Equal(t, model.Version{Major: 11, Minor: 0}, facets.Version)
	assert.Equal(t, model.StabilityDebug, facets.Stability)
	assert.Equal(t, model.ChangeBreaking, facets.Change)
	assert.Equal(t, "A10.3[F|t|+]", facets.Parent)

	for _, q := range prompt.asked {
		assert.NotContains(t, q, "track", "facets given as flags must not be asked for")
	}
}

// TestResolveFacets_NoParentSkipsPrompt verifies --no-parent wins over
// everything, including the prompt.
func TestResolveFacets_NoParentSkipsPrompt(t *testing.T) {
	flags := &buildFlags{track: "A", version: "1.0", env: "F", stability: "t", change: "+",
		noParent: true, autoParent: true}
	prompt := &inputPrompter{answers: map[string]string{"parent": "A9.1"}}

	facets, err := resolveFacets(flags, testSettings(), nil,
		lastRecord("A10.3[F|t|+]"), true, prompt)
	require.NoError(t, err)

	assert.Empty(t, facets.Parent)
	for _, q := range prompt.asked {
		assert.NotContains(t, q, "parent")
	}
}

func TestResolveFacets_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		flags buildFlags
	}{
		{"bad track", buildFlags{track: "Z"}},
		{"bad version", buildFlags{track: "A", version: "1.2.3"}},
		{"bad env", buildFlags{track: "A", version: "1.0", env: "q"}},
		{"bad stability", buildFlags{track: "A", version: "1.0", env: "F", stability: "Q"}},
		{"bad change", buildFlags{track: "A", version: "1.0", env: "F", stability: "t", change: "#"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveFacets(&tt.flags, testSettings(), nil,
				history.Record{}, false, ui.Auto{})
			require.Error(t, err)

			var cliErr *model.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, model.ExitFailure, cliErr.Code)
		})
	}
}

func TestResolveTool(t *testing.T) {
	manifest := &project.Manifest{
		BuildCommand: []string{"make", "-C", "firmware"},
		Port:         "/dev/ttyACM0",
	}

	tests := []struct {
		name        string
		flags       buildFlags
		manifest    *project.Manifest
		wantCommand []string
		wantPort    string
		wantMode    toolchain.Mode
	}{
		{
			name:        "defaults without manifest",
			flags:       buildFlags{},
			wantCommand: toolchain.DefaultCommand,
			wantPort:    "/dev/ttyUSB0",
			wantMode:    toolchain.ModeMonitor,
		},
		{
			name:        "manifest overrides command and port",
			flags:       buildFlags{},
			manifest:    manifest,
			wantCommand: []string{"make", "-C", "firmware"},
			wantPort:    "/dev/ttyACM0",
			wantMode:    toolchain.ModeMonitor,
		},
		{
			name:        "port flag beats manifest",
			flags:       buildFlags{port: "/dev/ttyS9"},
			manifest:    manifest,
			wantCommand: []string{"make", "-C", "firmware"},
			wantPort:    "/dev/ttyS9",
			wantMode:    toolchain.ModeMonitor,
		},
		{
			name:        "no-monitor stops at flash",
			flags:       buildFlags{noMonitor: true},
			wantCommand: toolchain.DefaultCommand,
			wantPort:    "/dev/ttyUSB0",
			wantMode:    toolchain.ModeFlash,
		},
		{
			name:        "no-flash wins over no-monitor",
			flags:       buildFlags{noFlash: true, noMonitor: true},
			wantCommand: toolchain.DefaultCommand,
			wantPort:    "/dev/ttyUSB0",
			wantMode:    toolchain.ModeBuild,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, port, mode := resolveTool(&tt.flags, testSettings(), tt.manifest)
			assert.Equal(t, tt.wantCommand, command)
			assert.Equal(t, tt.wantPort, port)
			assert.Equal(t, tt.wantMode, mode)
		})
	}
}

// TestResolveFacets_ManifestRestrictsEnv verifies the manifest's
// environment allow-list is enforced.
func TestResolveFacets_ManifestRestrictsEnv(t *testing.T) {
	manifest := &project.Manifest{Environments: []string{"F", "T"}}
	flags := &buildFlags{track: "A", version: "1.0", env: "W", stability: "t", change: "+", noParent: true}

	_, err := resolveFacets(flags, testSettings(), manifest,
		history.Record{}, false, ui.Auto{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), project.ManifestName)

	flags.env = "F"
	_, err = resolveFacets(flags, testSettings(), manifest,
		history.Record{}, false, ui.Auto{})
	assert.NoError(t, err)
}
