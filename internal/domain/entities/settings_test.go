//go:build unit

package entities_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewSettings(t *testing.T) {
	t.Parallel()

	t.Run("should load a YAML config file", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, ".nonsnapshot.yaml", `
base_version: 2.0.0
upstream_dependencies:
  - "org.example:*:1"
  - "com.acme:lib"
repositories:
  - url: https://repo.example.com/maven2
    username: ci
    password: secret
resolver:
  timeout: 5s
  workers: 2
  retries: -1
revision: r42
changed_modules_file: changed.txt
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", settings.BaseVersion)
		assert.Equal(t, []string{"org.example:*:1", "com.acme:lib"}, settings.UpstreamDependencies)
		require.Len(t, settings.Repositories, 1)
		assert.Equal(t, "https://repo.example.com/maven2", settings.Repositories[0].URL)
		assert.Equal(t, "ci", settings.Repositories[0].Username)
		assert.Equal(t, "secret", settings.Repositories[0].Password)
		assert.Equal(t, 5*time.Second, settings.Resolver.Timeout)
		assert.Equal(t, 2, settings.Resolver.Workers)
		assert.Zero(t, settings.RetryCount())
		assert.Equal(t, "r42", settings.Revision)
		assert.Equal(t, "changed.txt", settings.ChangedModulesFile)

		rules, rulesErr := settings.UpstreamRules()
		require.NoError(t, rulesErr)
		assert.Len(t, rules, 2)
	})

	t.Run("should load an HCL config file", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "nonsnapshot.hcl", `
base_version          = "2.0.0"
upstream_dependencies = ["org.example:*:1", "com.acme:lib"]
revision              = "r42"

resolver {
  timeout = "5s"
  workers = 2
  retries = 3
}

repository {
  url      = "https://repo.example.com/maven2"
  username = "ci"
}

repository {
  url = "https://mirror.example.com/maven2"
}
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", settings.BaseVersion)
		assert.Equal(t, []string{"org.example:*:1", "com.acme:lib"}, settings.UpstreamDependencies)
		assert.Equal(t, "r42", settings.Revision)
		assert.Equal(t, 5*time.Second, settings.Resolver.Timeout)
		assert.Equal(t, 2, settings.Resolver.Workers)
		assert.Equal(t, 3, settings.RetryCount())
		require.Len(t, settings.Repositories, 2)
		assert.Equal(t, "ci", settings.Repositories[0].Username)
		assert.Equal(t, "https://mirror.example.com/maven2", settings.Repositories[1].URL)
	})

	t.Run("should apply defaults to an empty file", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "nonsnapshot.yml", "")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		require.Len(t, settings.Repositories, 1)
		assert.Equal(t, entities.DefaultRepositoryURL, settings.Repositories[0].URL)
		assert.Equal(t, entities.DefaultResolverTimeout, settings.Resolver.Timeout)
		assert.Equal(t, entities.DefaultResolverWorkers, settings.Resolver.Workers)
		assert.Equal(t, entities.DefaultResolverRetries, settings.RetryCount())
	})

	t.Run("should read a password from a file", func(t *testing.T) {
		t.Parallel()

		// given
		secretPath := filepath.Join(t.TempDir(), "password")
		require.NoError(t, os.WriteFile(secretPath, []byte("from-file\n"), 0o600))
		path := writeConfig(t, "nonsnapshot.yaml", `
repositories:
  - url: https://repo.example.com/maven2
    password: `+secretPath+`
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-file", settings.Repositories[0].Password)
	})

	t.Run("should reject an invalid upstream rule", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "nonsnapshot.yaml", `
upstream_dependencies:
  - "not-a-rule"
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Nil(t, settings)
		assert.True(t, errors.Is(err, entities.ErrConfiguration))
	})

	t.Run("should reject a repository without url", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "nonsnapshot.yaml", `
repositories:
  - username: ci
`)

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrConfiguration))
	})

	t.Run("should reject a revision with spaces", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "nonsnapshot.yaml", `revision: "a b"`)

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrConfiguration))
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NewSettings(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.Error(t, err)
	})
}

func TestNewSettingsExpandsEnvironment(t *testing.T) {
	// given
	t.Setenv("NONSNAPSHOT_TEST_USER", "ci-user")
	path := writeConfig(t, "nonsnapshot.yaml", `
repositories:
  - url: https://repo.example.com/maven2
    username: ${NONSNAPSHOT_TEST_USER}
`)

	// when
	settings, err := entities.NewSettings(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, "ci-user", settings.Repositories[0].Username)
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("should find the config file in the project directory", func(t *testing.T) {
		t.Parallel()

		// given
		projectDir := t.TempDir()
		expected := filepath.Join(projectDir, ".nonsnapshot.yaml")
		require.NoError(t, os.WriteFile(expected, []byte("revision: r1\n"), 0o600))

		// when
		path, err := entities.FindConfigFile(projectDir)

		// then
		require.NoError(t, err)
		assert.Equal(t, expected, path)
	})
}
