package entities

import (
	"strconv"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
	"golang.org/x/mod/semver"
)

// Qualifier ranks in Maven order. A plain release ranks rankRelease;
// numeric and unknown qualifiers, such as revision tokens, sort after it.
const (
	rankAlpha = iota - 5
	rankBeta
	rankMilestone
	rankCandidate
	rankSnapshot
	rankRelease
	rankServicePack
	rankOther
)

//nolint:gochecknoglobals // read-only lookup table
var qualifierRanks = map[string]int{
	"alpha":     rankAlpha,
	"beta":      rankBeta,
	"milestone": rankMilestone,
	"rc":        rankCandidate,
	"cr":        rankCandidate,
	"snapshot":  rankSnapshot,
	"ga":        rankRelease,
	"final":     rankRelease,
	"release":   rankRelease,
	"sp":        rankServicePack,
}

// qualifierAliases only apply when a number follows, as in "b2" or "M3".
//
//nolint:gochecknoglobals // read-only lookup table
var qualifierAliases = map[string]string{
	"a": "alpha",
	"b": "beta",
	"m": "milestone",
}

// VersionRange is a half-open range: Lower is exclusive, Upper is exclusive,
// an empty Upper means unbounded above.
type VersionRange struct {
	Lower string
	Upper string
}

// String renders the range in Maven notation, e.g. "(1.0.0,2.4.0)" or "(1.0.0,)".
func (r VersionRange) String() string {
	return "(" + r.Lower + "," + r.Upper + ")"
}

// Contains reports whether version lies strictly inside the range.
func (r VersionRange) Contains(version string) bool {
	if r.Lower != "" && CompareVersions(version, r.Lower) <= 0 {
		return false
	}
	if r.Upper != "" && CompareVersions(version, r.Upper) >= 0 {
		return false
	}
	return true
}

// BaseVersion strips the revision suffix from a version:
// "1.0.0-SNAPSHOT" and "1.0.0-1234" both become "1.0.0".
func BaseVersion(version string) string {
	version = strings.TrimSpace(version)
	if idx := strings.Index(version, "-"); idx >= 0 {
		return version[:idx]
	}
	return version
}

// HighestVersion returns the greatest version of the list, or an empty string.
func HighestVersion(versions []string) string {
	highest := ""
	for _, v := range versions {
		if highest == "" || CompareVersions(v, highest) > 0 {
			highest = v
		}
	}
	return highest
}

// CompareVersions orders two versions of the form release[-qualifier].
// Releases compare numerically. For equal releases the qualifiers follow
// Maven: alpha < beta < milestone < rc < SNAPSHOT < release < sp, and any
// other qualifier (a revision) sorts after the release.
func CompareVersions(a, b string) int {
	releaseA, qualifierA := splitQualifier(a)
	releaseB, qualifierB := splitQualifier(b)

	if c := compareReleases(releaseA, releaseB); c != 0 {
		return c
	}
	return compareQualifiers(qualifierA, qualifierB)
}

func compareQualifiers(a, b string) int {
	if a == b {
		return 0
	}
	qa, qb := parseQualifier(a), parseQualifier(b)
	if qa.rank != qb.rank {
		return compareInts(qa.rank, qb.rank)
	}
	if qa.rank != rankOther {
		if c := compareInts(qa.number, qb.number); c != 0 {
			return c
		}
		return compareQualifiers(qa.tail, qb.tail)
	}

	numA, errA := strconv.ParseUint(a, 10, 64)
	numB, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		if numA < numB {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// qualifier is a parsed version qualifier such as "RC2" or "beta-1-SNAPSHOT".
type qualifier struct {
	rank   int
	number int
	tail   string // What follows the number, e.g. "SNAPSHOT"
}

func parseQualifier(raw string) qualifier {
	if raw == "" {
		return qualifier{rank: rankRelease}
	}
	other := qualifier{rank: rankOther}

	lower := strings.ToLower(raw)
	nameEnd := strings.IndexFunc(lower, func(r rune) bool { return r < 'a' || r > 'z' })
	if nameEnd < 0 {
		nameEnd = len(lower)
	}
	name, rest := lower[:nameEnd], strings.TrimLeft(lower[nameEnd:], "-.")
	digitsEnd := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if digitsEnd < 0 {
		digitsEnd = len(rest)
	}
	digits, tail := rest[:digitsEnd], strings.TrimLeft(rest[digitsEnd:], "-.")

	rank, known := qualifierRanks[name]
	if alias, ok := qualifierAliases[name]; ok && digits != "" {
		rank, known = qualifierRanks[alias], true
	}
	// "a1b2c3d" is a revision hash, not alpha 1
	if !known || (tail != "" && parseQualifier(tail).rank == rankOther) {
		return other
	}

	parsed := qualifier{rank: rank, tail: tail}
	if digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return other
		}
		parsed.number = n
	}
	return parsed
}

func compareReleases(a, b string) int {
	normA, normB := normalizeVersion(a), normalizeVersion(b)
	if semver.IsValid(normA) && semver.IsValid(normB) {
		return semver.Compare(normA, normB)
	}

	// Releases the strict parser rejects, e.g. leading zeros.
	va, errA := mmsemver.NewVersion(a)
	vb, errB := mmsemver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	partsA, partsB := numericParts(a), numericParts(b)
	for i := 0; i < len(partsA) || i < len(partsB); i++ {
		var x, y int
		if i < len(partsA) {
			x = partsA[i]
		}
		if i < len(partsB) {
			y = partsB[i]
		}
		if x != y {
			return compareInts(x, y)
		}
	}
	return 0
}

// normalizeVersion ensures version has 'v' prefix for semver compatibility
func normalizeVersion(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// splitQualifier splits at the first '-', or at a '.' followed by a letter
// as in "5.0.0.RC1".
func splitQualifier(version string) (string, string) {
	version = strings.TrimSpace(version)
	for i := 0; i < len(version); i++ {
		switch {
		case version[i] == '-':
			return version[:i], version[i+1:]
		case version[i] == '.' && i+1 < len(version) && isLetter(version[i+1]):
			return version[:i], version[i+1:]
		}
	}
	return version, ""
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// numericParts returns the leading dot separated numbers of the release part.
func numericParts(version string) []int {
	release, _ := splitQualifier(version)
	fields := strings.Split(release, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
