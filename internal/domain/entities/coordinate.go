package entities

import "fmt"

// BuildCoordinate identifies an artifact by group and artifact name.
// The version is carried as data only and never takes part in matching.
type BuildCoordinate struct {
	GroupID    string
	ArtifactID string
	Version    string // Empty when the descriptor does not declare one
}

// Key returns the version-less identity used to match modules and dependencies.
func (c BuildCoordinate) Key() string {
	return c.GroupID + ":" + c.ArtifactID
}

// SameArtifact reports whether both coordinates denote the same group and artifact.
func (c BuildCoordinate) SameArtifact(other BuildCoordinate) bool {
	return c.GroupID == other.GroupID && c.ArtifactID == other.ArtifactID
}

func (c BuildCoordinate) String() string {
	if c.Version == "" {
		return c.Key()
	}
	return fmt.Sprintf("%s:%s:%s", c.GroupID, c.ArtifactID, c.Version)
}
