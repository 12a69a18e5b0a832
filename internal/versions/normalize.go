// Package versions normalizes version strings found in type definition paths and headers,
// and carries the build information of the indexer binary.
package versions

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is recorded when no valid version can be derived
const DefaultVersion = "0.0.0"

// Pattern matches a version-like token as it appears in file names and definition headers,
// e.g. 4.x, 1.2, 1.2.3-beta.
const Pattern = `\d+\.(?:\d+|x)(?:\.(?:\d+|x)(?:-[^-\s]+)?)?`

var majorMinor = regexp.MustCompile(`^\d+\.\d+$`)

// Normalize converts a raw version token to a strict semantic version.
// Wildcard components (".x") become ".0", a two component version gets a
// patch of zero appended and build metadata is dropped. The second return value is false when the result
// is not a valid semantic version.
func Normalize(raw string) (string, bool) {
	parts := strings.Split(raw, ".")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "x" {
			parts[i] = "0"
		}
	}
	candidate := strings.Join(parts, ".")

	if majorMinor.MatchString(candidate) {
		candidate += ".0"
	}

	v, err := semver.StrictNewVersion(candidate)
	if err != nil {
		return "", false
	}
	// build metadata is not part of the version identity
	stripped, err := v.SetMetadata("")
	if err != nil {
		return "", false
	}
	return stripped.String(), true
}

// NormalizeOrDefault is Normalize with DefaultVersion as the fallback
func NormalizeOrDefault(raw string) string {
	if v, ok := Normalize(raw); ok {
		return v
	}
	return DefaultVersion
}
