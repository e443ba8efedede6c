package maven

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/internal/domain/repositories"
)

const (
	metadataFileName = "maven-metadata.xml"
	retryWaitMin     = 200 * time.Millisecond
	retryWaitMax     = 2 * time.Second
	maxMetadataSize  = 8 << 20
)

// metadata is the subset of maven-metadata.xml listing published versions.
type metadata struct {
	Versions []string `xml:"versioning>versions>version"`
}

// ResolverRepository implements repositories.VersionResolverRepository
// against Maven-layout remote repositories. The version list of an artifact
// is read from its maven-metadata.xml in every configured repository.
type ResolverRepository struct {
	client       *retryablehttp.Client
	repositories []entities.RepositoryConfig
}

// NewResolverRepository creates a resolver for the repositories of settings.
// It has the signature of repositories.VersionResolverFactory.
func NewResolverRepository(settings *entities.Settings) repositories.VersionResolverRepository {
	client := retryablehttp.NewClient()
	client.RetryMax = settings.RetryCount()
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	if logger.IsLevelEnabled(logger.DebugLevel) {
		client.Logger = logger.StandardLogger()
	}
	client.HTTPClient.Timeout = settings.Resolver.Timeout

	repos := settings.Repositories
	if len(repos) == 0 {
		repos = []entities.RepositoryConfig{{URL: entities.DefaultRepositoryURL}}
	}
	return &ResolverRepository{client: client, repositories: repos}
}

// ResolveVersionRange returns every published version of coordinate that
// lies inside versionRange, in ascending order. An artifact unknown to all
// repositories yields an empty list.
func (r *ResolverRepository) ResolveVersionRange(
	ctx context.Context,
	coordinate entities.BuildCoordinate,
	versionRange entities.VersionRange,
) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	for _, repo := range r.repositories {
		versions, err := r.fetchVersions(ctx, repo, coordinate)
		if err != nil {
			return nil, &entities.DependencyResolutionError{Coordinate: coordinate, Range: versionRange, Err: err}
		}
		for _, v := range versions {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] || !versionRange.Contains(v) {
				continue
			}
			seen[v] = true
			result = append(result, v)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return entities.CompareVersions(result[i], result[j]) < 0
	})
	logger.Debugf("Versions of %s in %s: %v", coordinate.Key(), versionRange, result)
	return result, nil
}

func (r *ResolverRepository) fetchVersions(
	ctx context.Context,
	repo entities.RepositoryConfig,
	coordinate entities.BuildCoordinate,
) ([]string, error) {
	url := MetadataURL(repo.URL, coordinate)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if repo.Username != "" || repo.Password != "" {
		req.SetBasicAuth(repo.Username, repo.Password)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.Debugf("No metadata for %s at %s", coordinate.Key(), repo.URL)
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}

	var meta metadata
	if unmarshalErr := xml.Unmarshal(body, &meta); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, unmarshalErr)
	}
	return meta.Versions, nil
}

// MetadataURL returns the location of the artifact's maven-metadata.xml in
// the repository at baseURL.
func MetadataURL(baseURL string, coordinate entities.BuildCoordinate) string {
	return strings.TrimRight(baseURL, "/") + "/" +
		strings.ReplaceAll(coordinate.GroupID, ".", "/") + "/" +
		coordinate.ArtifactID + "/" + metadataFileName
}
