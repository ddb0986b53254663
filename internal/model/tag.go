package model

import (
	"fmt"
	"regexp"
	"strings"
)

// BracketStyle selects how the parent reference is wrapped inside a
// composed tag string. The Unicode style is the default; the ASCII
// style exists for terminals and toolchains that cannot render the
// mathematical angle brackets. Both styles must always be accepted on
// the parsing side, regardless of which one composition used.
type BracketStyle int

const (
	// BracketsUnicode wraps the parent as ⟪parent⟫.
	BracketsUnicode BracketStyle = iota

	// BracketsASCII wraps the parent as <<parent>>.
	BracketsASCII
)

// Bracket delimiter pairs, per style.
const (
	openUnicode  = "⟪"
	closeUnicode = "⟫"
	openASCII    = "<<"
	closeASCII   = ">>"

	// parentSep separates the base tag from the wrapped parent reference.
	parentSep = "::"
)

// Open returns the opening delimiter for the style.
func (b BracketStyle) Open() string {
	if b == BracketsASCII {
		return openASCII
	}
	return openUnicode
}

// Close returns the closing delimiter for the style.
func (b BracketStyle) Close() string {
	if b == BracketsASCII {
		return closeASCII
	}
	return closeUnicode
}

// VersionTag is the canonical, serializable identity of a build.
//
// Canonical string form:
//
//	{track}{major}.{minor}[{environment}|{stability}|{changeType}]
//
// optionally suffixed with ::⟪{parent}⟫ (or ::<<{parent}>> in ASCII
// bracket style) when a parent reference is present.
type VersionTag struct {
	Track     Track
	Version   Version
	Env       Environment
	Stability Stability
	Change    ChangeType

	// Parent is the parent build's tag string, verbatim. It may itself
	// contain a parent suffix; the string is never interpreted beyond
	// extracting track and major version for branch resolution.
	Parent string
}

// ComposeTag builds the VersionTag for a set of validated facets.
func ComposeTag(f BuildFacets) VersionTag {
	return VersionTag{
		Track:     f.Track,
		Version:   f.Version,
		Env:       f.Env,
		Stability: f.Stability,
		Change:    f.Change,
		Parent:    f.Parent,
	}
}

// String renders the tag with the default (Unicode) bracket style.
func (v VersionTag) String() string {
	return v.Render(BracketsUnicode)
}

// Render produces the canonical string form using the given bracket
// style for the parent suffix. Tags without a parent render identically
// under both styles.
func (v VersionTag) Render(style BracketStyle) string {
	base := fmt.Sprintf("%s%d.%d[%s|%s|%s]",
		v.Track, v.Version.Major, v.Version.Minor, v.Env, v.Stability, v.Change)
	if v.Parent == "" {
		return base
	}
	return base + parentSep + style.Open() + v.Parent + style.Close()
}

// AnnotatedTagName returns the name used for the annotated git tag of
// this build: v{track}{major}.{minor}.
func (v VersionTag) AnnotatedTagName() string {
	return fmt.Sprintf("v%s%d.%d", v.Track, v.Version.Major, v.Version.Minor)
}

// tagRegex matches the base portion of a canonical tag string.
// Group 1: track letter, 2: major, 3: minor (optional), 4: environment,
// 5: stability, 6: change symbol.
var tagRegex = regexp.MustCompile(`^([A-Za-z])([0-9]+)(?:\.([0-9]+))?\[([A-Z])\|([a-z])\|(.)\]`)

// ParseTag parses a canonical tag string back into its structured form.
// The parent reference, if present, is extracted verbatim but not
// recursively parsed.
func ParseTag(s string) (VersionTag, error) {
	m := tagRegex.FindStringSubmatch(s)
	if m == nil {
		return VersionTag{}, fmt.Errorf("malformed tag string %q", s)
	}

	track, err := ParseTrack(m[1])
	if err != nil {
		return VersionTag{}, fmt.Errorf("tag %q: %w", s, err)
	}
	versionStr := m[2]
	if m[3] != "" {
		versionStr += "." + m[3]
	}
	version, err := ParseVersion(versionStr)
	if err != nil {
		return VersionTag{}, fmt.Errorf("tag %q: %w", s, err)
	}
	env, err := ParseEnvironment(m[4])
	if err != nil {
		return VersionTag{}, fmt.Errorf("tag %q: %w", s, err)
	}
	stability, err := ParseStability(m[5])
	if err != nil {
		return VersionTag{}, fmt.Errorf("tag %q: %w", s, err)
	}
	change, err := ParseChangeType(m[6])
	if err != nil {
		return VersionTag{}, fmt.Errorf("tag %q: %w", s, err)
	}

	return VersionTag{
		Track:     track,
		Version:   version,
		Env:       env,
		Stability: stability,
		Change:    change,
		Parent:    ExtractParent(s),
	}, nil
}

// ExtractParent returns the parent reference embedded in a tag string,
// byte-for-byte as it was composed, or "" when the tag carries none.
//
// Both bracket styles are accepted unconditionally: a tag composed
// under the ASCII style must still round-trip when the process is later
// configured for Unicode brackets, and vice versa. Only the first "::"
// is significant — everything between the opening delimiter that
// follows it and the closing delimiter at the end of the string is the
// parent, which keeps nested parent suffixes intact.
func ExtractParent(tag string) string {
	idx := strings.Index(tag, parentSep)
	if idx < 0 {
		return ""
	}
	rest := tag[idx+len(parentSep):]

	for _, style := range []BracketStyle{BracketsUnicode, BracketsASCII} {
		open, closer := style.Open(), style.Close()
		if strings.HasPrefix(rest, open) && strings.HasSuffix(rest, closer) &&
			len(rest) >= len(open)+len(closer) {
			return rest[len(open) : len(rest)-len(closer)]
		}
	}
	return ""
}

// BranchName resolves the "major branch" for a track and major version:
// {track}{major}. Two tags with equal track and major version always
// share a branch; the minor version never affects branch identity.
func BranchName(t Track, major int) string {
	return fmt.Sprintf("%s%d", t, major)
}

// Branch resolves the major branch this tag belongs to.
func (v VersionTag) Branch() string {
	return BranchName(v.Track, v.Version.Major)
}

// BranchOfTag resolves the major branch for a bare tag or version
// string such as "A9.1", "B3" or a full composed tag. It strips one
// leading alphabetic track character and truncates at the first
// non-digit, so "A10.3[F|t|+]" and "A10.9" both resolve to "A10".
// Returns an error when no track letter or no digits are found.
func BranchOfTag(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty tag reference")
	}
	track, err := ParseTrack(s[:1])
	if err != nil {
		return "", fmt.Errorf("tag reference %q: %w", s, err)
	}

	digits := s[1:]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", fmt.Errorf("tag reference %q has no major version", s)
	}

	return string(track) + digits[:end], nil
}

// TrackOfTag returns the track letter of a bare tag or version string.
// Used by the cross-track gate to compare a parent's track against the
// current build's track.
func TrackOfTag(s string) (Track, error) {
	if s == "" {
		return "", fmt.Errorf("empty tag reference")
	}
	return ParseTrack(s[:1])
}
