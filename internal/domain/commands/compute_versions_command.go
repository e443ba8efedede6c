package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
)

const changedModulesFileMode = 0o644

// ComputeVersions is the interface for the first half of a run: everything
// up to, but excluding, rewriting the descriptors.
type ComputeVersions interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ComputeOptions) ([]*entities.Module, error)
}

// ComputeOptions holds runtime options for a single computation.
type ComputeOptions struct {
	ProjectDir string
	Revision   string // If set, overrides both the settings and the VCS revision
}

// ComputeVersionsCommand discovers the module tree, links it, resolves
// upstream versions, propagates dirty state and assigns new versions.
type ComputeVersionsCommand struct {
	descriptors     repositories.DescriptorRepository
	resolverFactory repositories.VersionResolverFactory
	revisions       repositories.RevisionRepository
}

// NewComputeVersionsCommand creates a new ComputeVersionsCommand.
func NewComputeVersionsCommand(
	descriptors repositories.DescriptorRepository,
	resolverFactory repositories.VersionResolverFactory,
	revisions repositories.RevisionRepository,
) *ComputeVersionsCommand {
	return &ComputeVersionsCommand{
		descriptors:     descriptors,
		resolverFactory: resolverFactory,
		revisions:       revisions,
	}
}

// Execute returns every module of the tree annotated with its dirty flag and
// new version. Any error aborts the run before a file is touched.
func (it *ComputeVersionsCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ComputeOptions,
) ([]*entities.Module, error) {
	rules, err := settings.UpstreamRules()
	if err != nil {
		return nil, err
	}

	projectDir, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	modules, err := discoverModules(ctx, it.descriptors, projectDir)
	if err != nil {
		return nil, err
	}
	logger.Infof("Found %d modules in %s", len(modules), projectDir)

	if _, linkErr := entities.LinkModules(modules); linkErr != nil {
		return nil, linkErr
	}

	if len(rules) > 0 {
		resolver := it.resolverFactory(settings)
		if resolveErr := resolveUpstreamVersions(ctx, resolver, modules, rules, settings.Resolver); resolveErr != nil {
			return nil, resolveErr
		}
	}

	entities.PropagateDirty(modules)
	dirty := entities.DirtyModules(modules)
	logger.Infof("%d of %d modules need a new version", len(dirty), len(modules))

	if len(dirty) > 0 {
		revision, revErr := it.resolveRevision(ctx, projectDir, settings, opts)
		if revErr != nil {
			return nil, revErr
		}
		assigned := entities.AssignVersions(modules, revision, settings.BaseVersion)
		for _, m := range dirty {
			if m.NewVersion() == "" {
				logger.Warnf("Module %s is dirty but has no base version, it will not be updated", m.Coordinate.Key())
				continue
			}
			logger.Debugf("Module %s: %s -> %s", m.Coordinate.Key(), m.Coordinate.Version, m.NewVersion())
		}
		logger.Infof("Assigned revision %q to %d modules", revision, len(assigned))
	}

	if settings.ChangedModulesFile != "" {
		if writeErr := writeChangedModulesFile(projectDir, settings.ChangedModulesFile, modules); writeErr != nil {
			return nil, writeErr
		}
	}

	return modules, nil
}

// resolveRevision picks the revision token: CLI option, then settings, then VCS.
func (it *ComputeVersionsCommand) resolveRevision(
	ctx context.Context,
	projectDir string,
	settings *entities.Settings,
	opts ComputeOptions,
) (string, error) {
	if opts.Revision != "" {
		return opts.Revision, nil
	}
	if settings.Revision != "" {
		return settings.Revision, nil
	}
	revision, err := it.revisions.Revision(ctx, projectDir)
	if err != nil {
		return "", fmt.Errorf("failed to determine revision: %w", err)
	}
	if revision == "" {
		return "", errors.New("failed to determine revision: empty revision")
	}
	return revision, nil
}

// discoverModules walks the declared child modules depth-first from the
// root directory. A descriptor reached twice aborts the walk.
func discoverModules(
	ctx context.Context,
	descriptors repositories.DescriptorRepository,
	rootDir string,
) ([]*entities.Module, error) {
	var modules []*entities.Module
	visited := make(map[string]bool)
	if _, err := walkModule(ctx, descriptors, rootDir, visited, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func walkModule(
	ctx context.Context,
	descriptors repositories.DescriptorRepository,
	dir string,
	visited map[string]bool,
	modules *[]*entities.Module,
) (*entities.Module, error) {
	path := filepath.Clean(descriptors.DescriptorPath(dir))
	if visited[path] {
		return nil, &entities.ModuleDiscoveryError{
			Path: path,
			Err:  errors.New("descriptor is reached more than once, module paths form a cycle"),
		}
	}
	visited[path] = true

	module, err := descriptors.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Found module %s: %s", module.Coordinate, path)
	*modules = append(*modules, module)

	baseDir := filepath.Dir(path)
	for _, childPath := range module.ChildPaths {
		childDir := filepath.Join(baseDir, filepath.FromSlash(childPath))
		child, childErr := walkModule(ctx, descriptors, childDir, visited, modules)
		if childErr != nil {
			return nil, childErr
		}
		module.Children = append(module.Children, child)
	}
	return module, nil
}

// upstreamQuery groups the dependencies sharing one coordinate and range.
type upstreamQuery struct {
	coordinate entities.BuildCoordinate
	rule       *entities.UpstreamRule
	deps       []*entities.DependencyReference
	latest     string
}

// resolveUpstreamVersions classifies untracked dependencies against the
// rules and queries the resolver for each distinct coordinate and range
// through a bounded worker pool.
func resolveUpstreamVersions(
	ctx context.Context,
	resolver repositories.VersionResolverRepository,
	modules []*entities.Module,
	rules []*entities.UpstreamRule,
	cfg entities.ResolverConfig,
) error {
	queries := make(map[string]*upstreamQuery)
	var order []*upstreamQuery
	for _, dep := range entities.UntrackedDependencies(modules) {
		rule, ok := entities.FindMatch(dep.Coordinate, rules)
		if !ok {
			continue
		}
		dep.UpstreamRule = rule

		key := dep.Coordinate.String() + rule.RangeFor(dep.Coordinate.Version).String()
		query, exists := queries[key]
		if !exists {
			query = &upstreamQuery{coordinate: dep.Coordinate, rule: rule}
			queries[key] = query
			order = append(order, query)
		}
		query.deps = append(query.deps, dep)
	}

	if len(order) == 0 {
		return nil
	}
	logger.Infof("Querying %d upstream dependencies", len(order))

	workers := cfg.Workers
	if workers <= 0 {
		workers = entities.DefaultResolverWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, query := range order {
		g.Go(func() error {
			latest, err := resolveLatestVersion(gctx, resolver, query.coordinate, query.rule, cfg)
			if err != nil {
				return err
			}
			query.latest = latest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, query := range order {
		if query.latest == "" {
			logger.Debugf("No newer version of %s within %s", query.coordinate, query.rule.Ceiling)
			continue
		}
		logger.Infof("Upstream dependency %s has newer version %s", query.coordinate, query.latest)
		for _, dep := range query.deps {
			dep.UpstreamVersion = query.latest
		}
	}
	return nil
}

// resolveLatestVersion queries the range (current, ceiling) and returns the
// highest version carrying the ceiling's fixed components, or an empty
// string when there is none.
func resolveLatestVersion(
	ctx context.Context,
	resolver repositories.VersionResolverRepository,
	coordinate entities.BuildCoordinate,
	rule *entities.UpstreamRule,
	cfg entities.ResolverConfig,
) (string, error) {
	versionRange := rule.RangeFor(coordinate.Version)

	queryCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	versions, err := resolver.ResolveVersionRange(queryCtx, coordinate, versionRange)
	if err != nil {
		var resolutionErr *entities.DependencyResolutionError
		if errors.As(err, &resolutionErr) {
			return "", err
		}
		return "", &entities.DependencyResolutionError{Coordinate: coordinate, Range: versionRange, Err: err}
	}

	candidates := make([]string, 0, len(versions))
	for _, v := range versions {
		if rule.Ceiling.Admits(v) && versionRange.Contains(v) {
			candidates = append(candidates, v)
		}
	}
	return entities.HighestVersion(candidates), nil
}

// writeChangedModulesFile lists the directories of every module that gets a
// new version, relative to the project directory, one per line.
func writeChangedModulesFile(projectDir, path string, modules []*entities.Module) error {
	var sb strings.Builder
	for _, m := range modules {
		if !m.IsWritable() {
			continue
		}
		rel, err := filepath.Rel(projectDir, m.Dir())
		if err != nil {
			rel = m.Dir()
		}
		sb.WriteString(filepath.ToSlash(rel))
		sb.WriteString("\n")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, path)
	}
	if err := os.WriteFile(path, []byte(sb.String()), changedModulesFileMode); err != nil {
		return fmt.Errorf("failed to write changed modules file %q: %w", path, err)
	}
	logger.Infof("Wrote changed modules to %s", path)
	return nil
}
