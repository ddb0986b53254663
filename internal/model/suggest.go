package model

// SuggestVersion derives the next version string from the most recent
// build's version or tag reference ("A9.1", "3", "B3.2[F|t|+]").
//
// The policy is minor-only: the minor component is incremented and the
// major component is never touched. Major bumps are always an explicit
// user decision, so automation must not produce them. When the input is
// empty or unparseable, the suggestion falls back to "1.0".
func SuggestVersion(last string) string {
	s := last

	// Tolerate a single leading track letter ("A9.1" → "9.1").
	if s != "" && (s[0] < '0' || s[0] > '9') {
		s = s[1:]
	}
	// Tolerate a full composed tag by cutting at the facet block.
	if i := indexNonVersion(s); i >= 0 {
		s = s[:i]
	}

	v, err := ParseVersion(s)
	if err != nil {
		return "1.0"
	}
	return Version{Major: v.Major, Minor: v.Minor + 1}.String()
}

// indexNonVersion returns the index of the first byte that cannot be
// part of a version string, or -1 when the whole string qualifies.
func indexNonVersion(s string) int {
	for i := 0; i < len(s); i++ {
		if (s[i] < '0' || s[i] > '9') && s[i] != '.' {
			return i
		}
	}
	return -1
}
