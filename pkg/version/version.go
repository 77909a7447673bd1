// Package version provides the comparable version value used to decide whether a
// catalog version is an upgrade over an installed one.
package version

import (
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Latest is the reserved version string meaning "always treat as newest".
const Latest = "latest"

// Version is an immutable, comparable version value.
// Strings that hashicorp/go-version cannot parse are kept verbatim and order
// below every parsable version.
type Version struct {
	raw    string
	parsed *goversion.Version
	latest bool
}

// Parse builds a Version from s. It never fails.
func Parse(s string) Version {
	raw := strings.TrimSpace(s)
	v := Version{raw: raw, latest: strings.EqualFold(raw, Latest)}
	if v.latest {
		return v
	}
	if parsed, err := goversion.NewVersion(raw); err == nil {
		v.parsed = parsed
	}
	return v
}

// String returns the version as it was given.
func (v Version) String() string {
	return v.raw
}

// IsLatest reports whether v is the latest sentinel.
func (v Version) IsLatest() bool {
	return v.latest
}

// IsParsable reports whether v has numeric components.
func (v Version) IsParsable() bool {
	return v.parsed != nil
}

// IsZero reports whether v was built from an empty string.
func (v Version) IsZero() bool {
	return v.raw == ""
}

// Compare returns -1, 0 or 1. The latest sentinel is greater than every other
// version and equal to itself.
func (v Version) Compare(other Version) int {
	switch {
	case v.latest && other.latest:
		return 0
	case v.latest:
		return 1
	case other.latest:
		return -1
	}

	switch {
	case v.parsed != nil && other.parsed != nil:
		return v.parsed.Compare(other.parsed)
	case v.parsed != nil:
		return 1
	case other.parsed != nil:
		return -1
	}
	return strings.Compare(strings.ToLower(v.raw), strings.ToLower(other.raw))
}

// LessThan reports whether v < other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether v == other.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsUpdateApplicable reports whether candidate counts as an upgrade over installed.
// Every applicability check in the update flow goes through here.
func IsUpdateApplicable(installed, candidate Version) bool {
	return installed.LessThan(candidate) || candidate.IsLatest()
}
