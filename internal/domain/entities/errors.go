package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors matching each failure class of a run.
var (
	// ErrModuleDiscovery indicates a descriptor is missing, unreadable or malformed.
	ErrModuleDiscovery = errors.New("module discovery failed")

	// ErrDependencyResolution indicates the remote version resolver could not answer.
	ErrDependencyResolution = errors.New("dependency resolution failed")

	// ErrPatchWrite indicates a selected descriptor could not be rewritten.
	ErrPatchWrite = errors.New("patch write failed")

	// ErrConfiguration indicates an invalid configuration value.
	ErrConfiguration = errors.New("invalid configuration")
)

// ModuleDiscoveryError is returned when a descriptor cannot be turned into a module.
type ModuleDiscoveryError struct {
	Path string
	Err  error
}

func (e *ModuleDiscoveryError) Error() string {
	return fmt.Sprintf("failed to load descriptor %q: %v", e.Path, e.Err)
}

func (e *ModuleDiscoveryError) Unwrap() error { return e.Err }

func (e *ModuleDiscoveryError) Is(target error) bool { return target == ErrModuleDiscovery }

// DependencyResolutionError is returned when a version range query fails at
// the transport level, including timeouts.
type DependencyResolutionError struct {
	Coordinate BuildCoordinate
	Range      VersionRange
	Err        error
}

func (e *DependencyResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s:%s: %v", e.Coordinate.Key(), e.Range.String(), e.Err)
}

func (e *DependencyResolutionError) Unwrap() error { return e.Err }

func (e *DependencyResolutionError) Is(target error) bool { return target == ErrDependencyResolution }

// PatchWriteError is returned when a descriptor selected for rewriting
// could not be written.
type PatchWriteError struct {
	Path string
	Err  error
}

func (e *PatchWriteError) Error() string {
	return fmt.Sprintf("failed to write descriptor %q: %v", e.Path, e.Err)
}

func (e *PatchWriteError) Unwrap() error { return e.Err }

func (e *PatchWriteError) Is(target error) bool { return target == ErrPatchWrite }

// ConfigurationError is returned when a configuration value cannot be parsed.
type ConfigurationError struct {
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration value %q: %s", e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
