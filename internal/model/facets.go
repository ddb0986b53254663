package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Track classifies the build lineage. Each track maps to its own family
// of major branches (A1, A2, ... / B1, ... / R1, ...).
type Track string

const (
	// TrackActive is the feature-development line.
	TrackActive Track = "A"

	// TrackBeta is the pre-release stabilization line.
	TrackBeta Track = "B"

	// TrackRelease is the release line.
	TrackRelease Track = "R"
)

// String returns the single-letter track code.
// This method satisfies the fmt.Stringer interface.
func (t Track) String() string {
	return string(t)
}

// IsValid checks whether the Track value is one of the defined tracks.
func (t Track) IsValid() bool {
	switch t {
	case TrackActive, TrackBeta, TrackRelease:
		return true
	default:
		return false
	}
}

// Describe returns a human-readable name for the track,
// used by interactive prompts and help output.
func (t Track) Describe() string {
	switch t {
	case TrackActive:
		return "active/feature"
	case TrackBeta:
		return "beta"
	case TrackRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ParseTrack converts a string to a Track.
// Returns an error if the string does not match any valid track.
func ParseTrack(s string) (Track, error) {
	t := Track(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid track %q (valid: A, B, R)", s)
	}
	return t, nil
}

// Environment identifies the deliverable flavor a build targets.
type Environment string

const (
	EnvFirmware Environment = "F"
	EnvWeb      Environment = "W"
	EnvBackend  Environment = "B"
	EnvTools    Environment = "T"
	EnvMulti    Environment = "M"
)

// String returns the single-letter environment code.
func (e Environment) String() string {
	return string(e)
}

// IsValid checks whether the Environment value is one of the defined codes.
func (e Environment) IsValid() bool {
	switch e {
	case EnvFirmware, EnvWeb, EnvBackend, EnvTools, EnvMulti:
		return true
	default:
		return false
	}
}

// Describe returns a human-readable name for the environment.
func (e Environment) Describe() string {
	switch e {
	case EnvFirmware:
		return "firmware"
	case EnvWeb:
		return "web"
	case EnvBackend:
		return "backend"
	case EnvTools:
		return "tools"
	case EnvMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// ParseEnvironment converts a string to an Environment.
func ParseEnvironment(s string) (Environment, error) {
	e := Environment(s)
	if !e.IsValid() {
		return "", fmt.Errorf("invalid environment %q (valid: F, W, B, T, M)", s)
	}
	return e, nil
}

// Stability grades how trustworthy the build is expected to be.
// StabilityStable is special: it arms the stable-promotion step,
// which offers to merge the major branch into the integration branch.
type Stability string

const (
	StabilityStable       Stability = "s"
	StabilityTest         Stability = "t"
	StabilityExperimental Stability = "e"
	StabilityPrototype    Stability = "p"
	StabilityDebug        Stability = "d"
	StabilityBroken       Stability = "x"
)

// String returns the single-letter stability code.
func (s Stability) String() string {
	return string(s)
}

// IsValid checks whether the Stability value is one of the defined codes.
func (s Stability) IsValid() bool {
	switch s {
	case StabilityStable, StabilityTest, StabilityExperimental,
		StabilityPrototype, StabilityDebug, StabilityBroken:
		return true
	default:
		return false
	}
}

// Describe returns a human-readable name for the stability grade.
func (s Stability) Describe() string {
	switch s {
	case StabilityStable:
		return "stable"
	case StabilityTest:
		return "test"
	case StabilityExperimental:
		return "experimental"
	case StabilityPrototype:
		return "prototype"
	case StabilityDebug:
		return "debug"
	case StabilityBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// ParseStability converts a string to a Stability.
func ParseStability(raw string) (Stability, error) {
	s := Stability(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid stability %q (valid: s, t, e, p, d, x)", raw)
	}
	return s, nil
}

// ChangeType records the dominant kind of change since the parent build.
// The symbols are deliberately terse — they appear inside every tag string.
type ChangeType string

const (
	ChangeFeature    ChangeType = "+"
	ChangeImprove    ChangeType = "*"
	ChangeRefactor   ChangeType = "%"
	ChangeBreaking   ChangeType = "!"
	ChangeFix        ChangeType = "~"
	ChangeMaintain   ChangeType = "="
	ChangeUnspecific ChangeType = "?"
)

// String returns the single-character change code.
func (c ChangeType) String() string {
	return string(c)
}

// IsValid checks whether the ChangeType value is one of the defined codes.
func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeFeature, ChangeImprove, ChangeRefactor, ChangeBreaking,
		ChangeFix, ChangeMaintain, ChangeUnspecific:
		return true
	default:
		return false
	}
}

// Describe returns a human-readable name for the change type.
func (c ChangeType) Describe() string {
	switch c {
	case ChangeFeature:
		return "feature"
	case ChangeImprove:
		return "improvement"
	case ChangeRefactor:
		return "refactor"
	case ChangeBreaking:
		return "breaking change"
	case ChangeFix:
		return "fix"
	case ChangeMaintain:
		return "maintenance"
	case ChangeUnspecific:
		return "unspecified"
	default:
		return "unknown"
	}
}

// ParseChangeType converts a string to a ChangeType.
func ParseChangeType(s string) (ChangeType, error) {
	c := ChangeType(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid change type %q (valid: + * %% ! ~ = ?)", s)
	}
	return c, nil
}

// versionRegex is the facet grammar for version strings: a major integer,
// optionally followed by a dot and a minor integer.
var versionRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ValidVersion reports whether s matches the version facet grammar
// ("3", "10.4"). The empty string is rejected.
func ValidVersion(s string) bool {
	return versionRegex.MatchString(s)
}

// Version is a (major, minor) pair. The minor component is optional in
// the string form and defaults to 0.
type Version struct {
	Major int
	Minor int
}

// String returns the canonical "major.minor" form. The minor component
// is always printed, even when it was omitted on input.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseVersion parses a version facet string into its structured form.
func ParseVersion(s string) (Version, error) {
	if !ValidVersion(s) {
		return Version{}, fmt.Errorf("invalid version %q (expected N or N.N)", s)
	}
	majorStr, minorStr, hasMinor := strings.Cut(s, ".")

	// The regexp guarantees both components are plain digit runs,
	// so Atoi cannot fail here.
	major, _ := strconv.Atoi(majorStr)
	minor := 0
	if hasMinor {
		minor, _ = strconv.Atoi(minorStr)
	}
	return Version{Major: major, Minor: minor}, nil
}

// BuildFacets is the validated input to one build attempt. All fields
// except Parent are required. Parent, when non-empty, is the composed
// tag string of the build this one derives from.
type BuildFacets struct {
	Track     Track
	Version   Version
	Env       Environment
	Stability Stability
	Change    ChangeType

	// Parent is the tag string of the originating build, verbatim.
	// Empty means the build has no recorded ancestry.
	Parent string
}

// Validate checks every required facet against its grammar. It returns
// the first violation found; the orchestrator treats any violation as
// fatal before a single git operation runs.
func (f BuildFacets) Validate() error {
	if !f.Track.IsValid() {
		return fmt.Errorf("invalid track %q (valid: A, B, R)", string(f.Track))
	}
	if f.Version.Major < 0 || f.Version.Minor < 0 {
		return fmt.Errorf("invalid version %s (components must be non-negative)", f.Version)
	}
	if !f.Env.IsValid() {
		return fmt.Errorf("invalid environment %q (valid: F, W, B, T, M)", string(f.Env))
	}
	if !f.Stability.IsValid() {
		return fmt.Errorf("invalid stability %q (valid: s, t, e, p, d, x)", string(f.Stability))
	}
	if !f.Change.IsValid() {
		return fmt.Errorf("invalid change type %q (valid: + * %% ! ~ = ?)", string(f.Change))
	}
	return nil
}
