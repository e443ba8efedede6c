package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	latestVersionSpec = "LATEST"
	maxCeilingParts   = 3
)

// VersionCeiling is a partially specified major.middle.minor bound.
// All components nil means any newer version is acceptable.
type VersionCeiling struct {
	Major  *int
	Middle *int
	Minor  *int
}

// IsUnbounded reports whether no component is set.
func (c VersionCeiling) IsUnbounded() bool {
	return c.Major == nil
}

// UpperBound returns the exclusive upper bound derived from the ceiling,
// or an empty string when the range is open above.
//
//	M     -> (M+1).0.0
//	M.N   -> M.(N+1).0
//	M.N.P -> M.N.(P+1)
func (c VersionCeiling) UpperBound() string {
	switch {
	case c.Major == nil:
		return ""
	case c.Middle == nil:
		return fmt.Sprintf("%d.0.0", *c.Major+1)
	case c.Minor == nil:
		return fmt.Sprintf("%d.%d.0", *c.Major, *c.Middle+1)
	default:
		return fmt.Sprintf("%d.%d.%d", *c.Major, *c.Middle, *c.Minor+1)
	}
}

// Admits reports whether version carries every component the ceiling fixes.
// Ceiling 2.3 admits 2.3.9 but not 2.4.0 or 1.1.1.
func (c VersionCeiling) Admits(version string) bool {
	fixed := []*int{c.Major, c.Middle, c.Minor}
	parts := numericParts(version)
	for i, want := range fixed {
		if want == nil {
			return true
		}
		if i >= len(parts) || parts[i] != *want {
			return false
		}
	}
	return true
}

func (c VersionCeiling) String() string {
	parts := make([]string, 0, maxCeilingParts)
	for _, p := range []*int{c.Major, c.Middle, c.Minor} {
		if p == nil {
			break
		}
		parts = append(parts, strconv.Itoa(*p))
	}
	if len(parts) == 0 {
		return latestVersionSpec
	}
	return strings.Join(parts, ".")
}

// UpstreamRule selects external dependencies whose versions are taken from a
// remote repository, limited by a version ceiling.
type UpstreamRule struct {
	GroupPattern    string
	ArtifactPattern string
	Ceiling         VersionCeiling

	group    *regexp.Regexp
	artifact *regexp.Regexp
}

// NewUpstreamRule compiles the given patterns into a rule. The patterns are
// regular expressions that must match the whole group or artifact name.
func NewUpstreamRule(groupPattern, artifactPattern string, ceiling VersionCeiling) (*UpstreamRule, error) {
	group, err := regexp.Compile(`^(?:` + groupPattern + `)$`)
	if err != nil {
		return nil, &ConfigurationError{Value: groupPattern, Reason: err.Error()}
	}
	artifact, err := regexp.Compile(`^(?:` + artifactPattern + `)$`)
	if err != nil {
		return nil, &ConfigurationError{Value: artifactPattern, Reason: err.Error()}
	}
	return &UpstreamRule{
		GroupPattern:    groupPattern,
		ArtifactPattern: artifactPattern,
		Ceiling:         ceiling,
		group:           group,
		artifact:        artifact,
	}, nil
}

// Matches reports whether both patterns fully match the coordinate.
func (r *UpstreamRule) Matches(coordinate BuildCoordinate) bool {
	return r.group.MatchString(coordinate.GroupID) && r.artifact.MatchString(coordinate.ArtifactID)
}

// RangeFor builds the query range for a dependency currently at version.
func (r *UpstreamRule) RangeFor(version string) VersionRange {
	return VersionRange{Lower: version, Upper: r.Ceiling.UpperBound()}
}

func (r *UpstreamRule) String() string {
	return fmt.Sprintf("%s:%s:%s", r.GroupPattern, r.ArtifactPattern, r.Ceiling)
}

// ParseUpstreamRule parses "group:artifact[:versionSpec]". In group and
// artifact a literal "." is escaped and "*" becomes ".*". The version spec
// is up to three dot separated numbers; "LATEST" or no spec means unbounded.
func ParseUpstreamRule(raw string) (*UpstreamRule, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, &ConfigurationError{Value: raw, Reason: "expected group:artifact[:version]"}
	}

	group := strings.TrimSpace(parts[0])
	artifact := strings.TrimSpace(parts[1])
	if group == "" || artifact == "" {
		return nil, &ConfigurationError{Value: raw, Reason: "group and artifact must not be empty"}
	}

	var ceiling VersionCeiling
	if len(parts) == 3 {
		parsed, err := parseCeiling(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, &ConfigurationError{Value: raw, Reason: err.Error()}
		}
		ceiling = parsed
	}

	return NewUpstreamRule(toPattern(group), toPattern(artifact), ceiling)
}

// ParseUpstreamRules parses every rule string, keeping the configured order.
func ParseUpstreamRules(raw []string) ([]*UpstreamRule, error) {
	rules := make([]*UpstreamRule, 0, len(raw))
	for _, r := range raw {
		rule, err := ParseUpstreamRule(r)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// FindMatch returns the first rule, in order, matching the coordinate.
func FindMatch(coordinate BuildCoordinate, rules []*UpstreamRule) (*UpstreamRule, bool) {
	for _, rule := range rules {
		if rule.Matches(coordinate) {
			return rule, true
		}
	}
	return nil, false
}

func toPattern(selector string) string {
	escaped := strings.ReplaceAll(selector, ".", `\.`)
	return strings.ReplaceAll(escaped, "*", ".*")
}

func parseCeiling(spec string) (VersionCeiling, error) {
	var ceiling VersionCeiling
	if spec == "" || spec == latestVersionSpec {
		return ceiling, nil
	}

	parts := strings.Split(spec, ".")
	if len(parts) > maxCeilingParts {
		return ceiling, fmt.Errorf("version %q has more than %d parts", spec, maxCeilingParts)
	}

	targets := []**int{&ceiling.Major, &ceiling.Middle, &ceiling.Minor}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return VersionCeiling{}, fmt.Errorf("version part %q is not a non-negative number", part)
		}
		*targets[i] = &n
	}
	return ceiling, nil
}
