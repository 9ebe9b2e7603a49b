// Package host provides session.Host implementations and helpers for
// identifying the embedding game server.
package host

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Host types.
const (
	TypePaper   = "paper"
	TypeUnknown = "unknown"
)

// Info is what the embedding server reports about itself.
type Info struct {
	Type    string
	Version string
}

// Describer is implemented by hosts that can report Info.
type Describer interface {
	Info() Info
}

// Describe returns h's Info, or an unknown Info when h cannot describe itself.
func Describe(h any) Info {
	if d, ok := h.(Describer); ok {
		return d.Info()
	}
	return Info{Type: TypeUnknown}
}

// CompareVersions compares two dotted server versions such as
// "1.20.4-R0.1-SNAPSHOT", ignoring everything after the first '-'. Missing
// components count as zero. Unparseable versions sort before valid ones.
func CompareVersions(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// SupportsAPIVersion reports whether version is at least required.
func SupportsAPIVersion(version, required string) bool {
	if !semver.IsValid(canonical(version)) {
		return false
	}
	return CompareVersions(version, required) >= 0
}

// canonical turns a server version into a semver string: "1.20" becomes
// "v1.20.0". Components past the third are dropped.
func canonical(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return ""
	}
	parts := strings.Split(v, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	parts = parts[:3]
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return ""
		}
		parts[i] = strconv.Itoa(n)
	}
	return "v" + strings.Join(parts, ".")
}
