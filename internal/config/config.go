// Package config loads the fwbuild settings store.
//
// The store is a flat KEY=value file (dotenv format), read and written
// through viper. On first use the file is seeded with built-in defaults
// so users have something concrete to edit. All recognized keys feed
// prompt defaults only — command-line flags always win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/embedk/fwbuild/internal/model"
)

// Recognized settings keys, as they appear in the file.
const (
	KeyDefaultEnv     = "DEFAULT_ENV"
	KeyDefaultPort    = "DEFAULT_PORT"
	KeyDefaultTrack   = "DEFAULT_TRACK"
	KeySeriesStrategy = "SERIES_STRATEGY"
)

// Settings is the immutable configuration value threaded into the CLI.
// There is no ambient global state; every component that needs a
// setting receives it explicitly.
type Settings struct {
	// DefaultEnv is the environment facet offered when none is given.
	DefaultEnv model.Environment

	// DefaultPort is the serial device passed to the build toolchain
	// when no --port flag is given.
	DefaultPort string

	// DefaultTrack is the track facet offered when none is given.
	DefaultTrack model.Track

	// SeriesStrategy names the branch-per-version strategy. Only
	// "major" (one branch per track+major pair) is implemented; the key
	// exists so the file format states the strategy explicitly.
	SeriesStrategy string
}

// SeriesMajor is the only implemented series strategy.
const SeriesMajor = "major"

// Defaults returns the built-in settings used to seed a missing store.
func Defaults() Settings {
	return Settings{
		DefaultEnv:     model.EnvFirmware,
		DefaultPort:    defaultSerialPort(),
		DefaultTrack:   model.TrackActive,
		SeriesStrategy: SeriesMajor,
	}
}

// defaultSerialPort picks a plausible serial device path per platform.
func defaultSerialPort() string {
	switch runtime.GOOS {
	case "darwin":
		return "/dev/cu.usbserial-0001"
	case "windows":
		return "COM3"
	default:
		return "/dev/ttyUSB0"
	}
}

// DefaultPath returns the default settings file location,
// ~/.config/fwbuild/fwbuild.env, falling back to the working directory
// when the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fwbuild.env"
	}
	return filepath.Join(home, ".config", "fwbuild", "fwbuild.env")
}

// Load reads the settings file at path, seeding it with defaults first
// when it does not exist. Invalid values are rejected, not silently
// replaced — a typo in the store should be fixed, not papered over.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	defaults := Defaults()
	v.SetDefault(KeyDefaultEnv, string(defaults.DefaultEnv))
	v.SetDefault(KeyDefaultPort, defaults.DefaultPort)
	v.SetDefault(KeyDefaultTrack, string(defaults.DefaultTrack))
	v.SetDefault(KeySeriesStrategy, defaults.SeriesStrategy)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !os.IsNotExist(err) && !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading settings %s: %w", path, err)
		}
		// First run: seed the store so the user has a file to edit.
		if err := seed(v, path); err != nil {
			return Settings{}, err
		}
	}

	env, err := model.ParseEnvironment(v.GetString(KeyDefaultEnv))
	if err != nil {
		return Settings{}, fmt.Errorf("settings %s: %s: %w", path, KeyDefaultEnv, err)
	}
	track, err := model.ParseTrack(v.GetString(KeyDefaultTrack))
	if err != nil {
		return Settings{}, fmt.Errorf("settings %s: %s: %w", path, KeyDefaultTrack, err)
	}
	strategy := v.GetString(KeySeriesStrategy)
	if strategy != SeriesMajor {
		return Settings{}, fmt.Errorf("settings %s: %s: unsupported strategy %q (only %q is implemented)",
			path, KeySeriesStrategy, strategy, SeriesMajor)
	}

	return Settings{
		DefaultEnv:     env,
		DefaultPort:    v.GetString(KeyDefaultPort),
		DefaultTrack:   track,
		SeriesStrategy: strategy,
	}, nil
}

// Write stores the settings at path, creating parent directories.
// Used by "fwbuild config --init" to reset the store to defaults.
func Write(s Settings, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.Set(KeyDefaultEnv, string(s.DefaultEnv))
	v.Set(KeyDefaultPort, s.DefaultPort)
	v.Set(KeyDefaultTrack, string(s.DefaultTrack))
	v.Set(KeySeriesStrategy, s.SeriesStrategy)
	return seed(v, path)
}

// seed writes the defaults to path, creating parent directories.
func seed(v *viper.Viper, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("seeding settings %s: %w", path, err)
	}
	return nil
}
