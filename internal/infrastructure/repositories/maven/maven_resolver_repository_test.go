//go:build unit

package maven_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/internal/infrastructure/repositories/maven"
)

const libMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>org.example</groupId>
  <artifactId>lib</artifactId>
  <versioning>
    <latest>3.0.0</latest>
    <release>3.0.0</release>
    <versions>
      <version>1.0.0</version>
      <version>2.3.0</version>
      <version>2.3.9</version>
      <version>2.4.0</version>
      <version>3.0.0</version>
    </versions>
  </versioning>
</metadata>
`

//nolint:gochecknoglobals // shared test fixture
var libCoordinate = entities.BuildCoordinate{GroupID: "org.example", ArtifactID: "lib", Version: "2.3.0"}

func newSettings(urls ...string) *entities.Settings {
	settings := entities.DefaultSettings()
	settings.Repositories = nil
	for _, url := range urls {
		settings.Repositories = append(settings.Repositories, entities.RepositoryConfig{URL: url})
	}
	settings.Resolver.Retries = -1
	return settings
}

func metadataServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/org/example/lib/maven-metadata.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestMetadataURL(t *testing.T) {
	t.Parallel()

	t.Run("should map the group to a path", func(t *testing.T) {
		t.Parallel()

		// when
		url := maven.MetadataURL("https://repo.example.com/maven2/", libCoordinate)

		// then
		assert.Equal(t, "https://repo.example.com/maven2/org/example/lib/maven-metadata.xml", url)
	})
}

func TestResolverRepositoryResolveVersionRange(t *testing.T) {
	t.Parallel()

	t.Run("should return the versions inside the range in ascending order", func(t *testing.T) {
		t.Parallel()

		// given
		server := metadataServer(t, libMetadata)
		resolver := maven.NewResolverRepository(newSettings(server.URL))

		// when
		versions, err := resolver.ResolveVersionRange(context.Background(), libCoordinate,
			entities.VersionRange{Lower: "2.3.0", Upper: "2.4.0"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"2.3.9"}, versions)
	})

	t.Run("should return every newer version for an open range", func(t *testing.T) {
		t.Parallel()

		// given
		server := metadataServer(t, libMetadata)
		resolver := maven.NewResolverRepository(newSettings(server.URL))

		// when
		versions, err := resolver.ResolveVersionRange(context.Background(), libCoordinate,
			entities.VersionRange{Lower: "2.3.0"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"2.3.9", "2.4.0", "3.0.0"}, versions)
	})

	t.Run("should return an empty list for an unknown artifact", func(t *testing.T) {
		t.Parallel()

		// given
		server := metadataServer(t, libMetadata)
		resolver := maven.NewResolverRepository(newSettings(server.URL))
		unknown := entities.BuildCoordinate{GroupID: "org.example", ArtifactID: "unknown", Version: "1.0"}

		// when
		versions, err := resolver.ResolveVersionRange(context.Background(), unknown,
			entities.VersionRange{Lower: "1.0"})

		// then
		require.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("should merge the versions of every repository", func(t *testing.T) {
		t.Parallel()

		// given
		first := metadataServer(t, `<metadata><versioning><versions>
			<version>2.3.1</version><version>2.3.9</version></versions></versioning></metadata>`)
		second := metadataServer(t, `<metadata><versioning><versions>
			<version>2.3.9</version><version>2.3.5</version></versions></versioning></metadata>`)
		resolver := maven.NewResolverRepository(newSettings(first.URL, second.URL))

		// when
		versions, err := resolver.ResolveVersionRange(context.Background(), libCoordinate,
			entities.VersionRange{Lower: "2.3.0", Upper: "2.4.0"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"2.3.1", "2.3.5", "2.3.9"}, versions)
	})

	t.Run("should send basic auth when credentials are configured", func(t *testing.T) {
		t.Parallel()

		// given
		var authorized atomic.Bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			authorized.Store(ok && user == "ci" && pass == "secret")
			_, _ = w.Write([]byte(libMetadata))
		}))
		t.Cleanup(server.Close)
		settings := newSettings()
		settings.Repositories = []entities.RepositoryConfig{{URL: server.URL, Username: "ci", Password: "secret"}}
		resolver := maven.NewResolverRepository(settings)

		// when
		_, err := resolver.ResolveVersionRange(context.Background(), libCoordinate,
			entities.VersionRange{Lower: "2.3.0"})

		// then
		require.NoError(t, err)
		assert.True(t, authorized.Load())
	})

	t.Run("should fail with a resolution error on a server error", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)
		resolver := maven.NewResolverRepository(newSettings(server.URL))

		// when
		versions, err := resolver.ResolveVersionRange(context.Background(), libCoordinate,
			entities.VersionRange{Lower: "2.3.0"})

		// then
		require.Error(t, err)
		assert.Nil(t, versions)
		assert.True(t, errors.Is(err, entities.ErrDependencyResolution))
	})

	t.Run("should fail with a resolution error on malformed metadata", func(t *testing.T) {
		t.Parallel()

		// given
		server := metadataServer(t, `<metadata><versioning>`)
		resolver := maven.NewResolverRepository(newSettings(server.URL))

		// when
		_, err := resolver.ResolveVersionRange(context.Background(), libCoordinate,
			entities.VersionRange{Lower: "2.3.0"})

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrDependencyResolution))
	})

	t.Run("should fail with a resolution error when the query times out", func(t *testing.T) {
		t.Parallel()

		// given
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			_, _ = w.Write([]byte(libMetadata))
		}))
		t.Cleanup(func() {
			close(release)
			server.Close()
		})
		resolver := maven.NewResolverRepository(newSettings(server.URL))
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		// when
		_, err := resolver.ResolveVersionRange(ctx, libCoordinate, entities.VersionRange{Lower: "2.3.0"})

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrDependencyResolution))
	})
}
