//go:build unit

package controllers_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/internal/infrastructure/controllers"
	"github.com/rios0rios0/nonsnapshot/test/domain/commanddoubles"
	"github.com/rios0rios0/nonsnapshot/test/domain/entitybuilders"
)

// newCommand builds a cobra command carrying the persistent flags of the CLI.
func newCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringP("config", "c", "", "")
	cmd.Flags().String("revision", "", "")
	cmd.Flags().Bool("dry-run", false, "")
	cmd.Flags().BoolP("verbose", "v", false, "")
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func configFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nonsnapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUpdateControllerExecute(t *testing.T) {
	t.Parallel()

	t.Run("should compute and write with the flags and config", func(t *testing.T) {
		t.Parallel()

		// given
		module := entitybuilders.NewModuleBuilder().BuildModule()
		compute := &commanddoubles.StubComputeVersionsCommand{Modules: []*entities.Module{module}}
		write := &commanddoubles.StubWriteVersionsCommand{}
		controller := controllers.NewUpdateController(compute, write)
		cmd := newCommand(t, map[string]string{
			"config":   configFile(t, "resolver:\n  workers: 3\n"),
			"revision": "r1",
		})

		// when
		err := controller.Execute(cmd, []string{"/project"})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, compute.ExecuteCallCount)
		assert.Equal(t, "/project", compute.LastOpts.ProjectDir)
		assert.Equal(t, "r1", compute.LastOpts.Revision)
		assert.Equal(t, 1, write.ExecuteCallCount)
		assert.Equal(t, []*entities.Module{module}, write.LastModules)
		assert.Equal(t, 3, write.LastOpts.Workers)
	})

	t.Run("should not write in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		compute := &commanddoubles.StubComputeVersionsCommand{}
		write := &commanddoubles.StubWriteVersionsCommand{}
		controller := controllers.NewUpdateController(compute, write)
		cmd := newCommand(t, map[string]string{
			"config":  configFile(t, ""),
			"dry-run": "true",
		})

		// when
		err := controller.Execute(cmd, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, compute.ExecuteCallCount)
		assert.Equal(t, ".", compute.LastOpts.ProjectDir)
		assert.Zero(t, write.ExecuteCallCount)
	})

	t.Run("should return the error and not write when the computation fails", func(t *testing.T) {
		t.Parallel()

		// given
		discoveryErr := &entities.ModuleDiscoveryError{Path: "pom.xml", Err: errors.New("boom")}
		compute := &commanddoubles.StubComputeVersionsCommand{ExecuteErr: discoveryErr}
		write := &commanddoubles.StubWriteVersionsCommand{}
		controller := controllers.NewUpdateController(compute, write)
		cmd := newCommand(t, map[string]string{"config": configFile(t, "")})

		// when
		err := controller.Execute(cmd, []string{"."})

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrModuleDiscovery))
		assert.Equal(t, 1, compute.ExecuteCallCount)
		assert.Zero(t, write.ExecuteCallCount)
	})

	t.Run("should return the write failure after reporting", func(t *testing.T) {
		t.Parallel()

		// given
		module := entitybuilders.NewModuleBuilder().BuildModule()
		writeErr := &entities.PatchWriteError{Path: "/project/pom.xml", Err: errors.New("disk full")}
		compute := &commanddoubles.StubComputeVersionsCommand{Modules: []*entities.Module{module}}
		write := &commanddoubles.StubWriteVersionsCommand{
			Report:     &entities.PatchReport{Failed: []*entities.PatchWriteError{writeErr}},
			ExecuteErr: writeErr,
		}
		controller := controllers.NewUpdateController(compute, write)
		cmd := newCommand(t, map[string]string{"config": configFile(t, "")})

		// when
		err := controller.Execute(cmd, []string{"."})

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrPatchWrite))
		assert.Equal(t, 1, write.ExecuteCallCount)
	})

	t.Run("should stop on an invalid config file", func(t *testing.T) {
		t.Parallel()

		// given
		compute := &commanddoubles.StubComputeVersionsCommand{}
		write := &commanddoubles.StubWriteVersionsCommand{}
		controller := controllers.NewUpdateController(compute, write)
		cmd := newCommand(t, map[string]string{
			"config": configFile(t, "upstream_dependencies:\n  - broken\n"),
		})

		// when
		err := controller.Execute(cmd, []string{"."})

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrConfiguration))
		assert.Zero(t, compute.ExecuteCallCount)
		assert.Zero(t, write.ExecuteCallCount)
	})
}

func TestPretendControllerExecute(t *testing.T) {
	t.Parallel()

	t.Run("should return the computation error", func(t *testing.T) {
		t.Parallel()

		// given
		resolveErr := &entities.DependencyResolutionError{Err: errors.New("connection refused")}
		compute := &commanddoubles.StubComputeVersionsCommand{ExecuteErr: resolveErr}
		controller := controllers.NewPretendController(compute)
		cmd := newCommand(t, map[string]string{"config": configFile(t, "")})

		// when
		err := controller.Execute(cmd, []string{"."})

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrDependencyResolution))
	})

	t.Run("should compute without writing", func(t *testing.T) {
		t.Parallel()

		// given
		module := entitybuilders.NewModuleBuilder().Dirty().BuildModule()
		entities.AssignVersions([]*entities.Module{module}, "r1", "")
		compute := &commanddoubles.StubComputeVersionsCommand{Modules: []*entities.Module{module}}
		controller := controllers.NewPretendController(compute)
		cmd := newCommand(t, map[string]string{
			"config": configFile(t, "upstream_dependencies:\n  - \"org.example:*\"\n"),
		})

		// when
		err := controller.Execute(cmd, []string{"/project"})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, compute.ExecuteCallCount)
		assert.Equal(t, []string{"org.example:*"}, compute.LastSettings.UpstreamDependencies)
	})
}

func TestControllerBinds(t *testing.T) {
	t.Parallel()

	t.Run("should expose the update and pretend subcommands", func(t *testing.T) {
		t.Parallel()

		// given
		update := controllers.NewUpdateController(
			&commanddoubles.StubComputeVersionsCommand{}, &commanddoubles.StubWriteVersionsCommand{})
		pretend := controllers.NewPretendController(&commanddoubles.StubComputeVersionsCommand{})

		// when
		all := controllers.NewControllers(update, pretend)

		// then
		require.Len(t, *all, 2)
		assert.Equal(t, "update [path]", (*all)[0].GetBind().Use)
		assert.Equal(t, "pretend [path]", (*all)[1].GetBind().Use)
	})
}
