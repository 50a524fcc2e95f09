package capsule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a keyword (domain, discipline, or tag):
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return s
}

// Clamp01 clamps v into [0,1]. Computed scores (collision strength, fused
// confidence) always pass through here before being stored.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// InRange01 reports whether v is a valid caller-supplied score.
func InRange01(v float64) bool {
	return v >= 0 && v <= 1
}

// BumpVersion advances a dotted numeric version by 0.1, formatted to one
// decimal ("1.0" -> "1.1", "1.9" -> "2.0"). The result never moves
// backwards.
func BumpVersion(version string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(version), 64)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", version, err)
	}
	return fmt.Sprintf("%.1f", v+0.1), nil
}

// InitialVersion is the version assigned to freshly created capsules.
const InitialVersion = "1.0"
