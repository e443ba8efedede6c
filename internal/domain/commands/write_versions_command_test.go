//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/nonsnapshot/internal/domain/commands"
	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
	"github.com/rios0rios0/nonsnapshot/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/nonsnapshot/test/infrastructure/repositorydoubles"
)

func writableModule(artifactID string) *entities.Module {
	module := entitybuilders.NewModuleBuilder().
		WithArtifactID(artifactID).
		WithDescriptorPath("/project/" + artifactID + "/pom.xml").
		Dirty().
		BuildModule()
	entities.AssignVersions([]*entities.Module{module}, "r1", "")
	return module
}

func TestWriteVersionsCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should write every module with changes and skip the rest", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyDescriptorRepository{}
		cmd := commands.NewWriteVersionsCommand(spy)
		a := writableModule("a")
		b := writableModule("b")
		clean := entitybuilders.NewModuleBuilder().
			WithArtifactID("clean").
			WithDescriptorPath("/project/clean/pom.xml").
			BuildModule()

		// when
		report, err := cmd.Execute(context.Background(), []*entities.Module{a, clean, b}, commands.WriteOptions{})

		// then
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"/project/a/pom.xml", "/project/b/pom.xml"}, report.Written)
		assert.Equal(t, []string{"/project/clean/pom.xml"}, report.Unchanged)
		assert.Empty(t, report.Failed)
		assert.ElementsMatch(t, report.Written, spy.WrittenPaths())
	})

	t.Run("should keep writing after a failure and report it", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyDescriptorRepository{
			WriteErrs: map[string]error{"/project/a/pom.xml": errors.New("permission denied")},
		}
		cmd := commands.NewWriteVersionsCommand(spy)
		a := writableModule("a")
		b := writableModule("b")

		// when
		report, err := cmd.Execute(context.Background(), []*entities.Module{a, b}, commands.WriteOptions{Workers: 1})

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrPatchWrite))
		assert.Equal(t, []string{"/project/b/pom.xml"}, report.Written)
		assert.Equal(t, []string{"/project/a/pom.xml"}, report.NotWritten())
	})

	t.Run("should collect every failure from parallel writes in module order", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyDescriptorRepository{
			WriteErrs: map[string]error{
				"/project/b/pom.xml": errors.New("permission denied"),
				"/project/d/pom.xml": &entities.PatchWriteError{Path: "/project/d/pom.xml", Err: errors.New("disk full")},
			},
		}
		cmd := commands.NewWriteVersionsCommand(spy)
		modules := []*entities.Module{
			writableModule("a"), writableModule("b"), writableModule("c"), writableModule("d"),
		}

		// when
		report, err := cmd.Execute(context.Background(), modules, commands.WriteOptions{Workers: 4})

		// then
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrPatchWrite))
		assert.Equal(t, []string{"/project/a/pom.xml", "/project/c/pom.xml"}, report.Written)
		assert.Equal(t, []string{"/project/b/pom.xml", "/project/d/pom.xml"}, report.NotWritten())
		assert.ElementsMatch(t, report.Written, spy.WrittenPaths())
	})

	t.Run("should report a descriptor shared by two modules", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyDescriptorRepository{}
		cmd := commands.NewWriteVersionsCommand(spy)
		a := writableModule("a")
		twin := writableModule("a")

		// when
		report, err := cmd.Execute(context.Background(), []*entities.Module{a, twin}, commands.WriteOptions{})

		// then
		require.Error(t, err)
		assert.Equal(t, []string{"/project/a/pom.xml"}, report.Written)
		assert.Len(t, report.Failed, 1)
	})

	t.Run("should write nothing for a clean tree", func(t *testing.T) {
		t.Parallel()

		// given
		spy := &doubles.SpyDescriptorRepository{}
		cmd := commands.NewWriteVersionsCommand(spy)
		module := entitybuilders.NewModuleBuilder().BuildModule()

		// when
		report, err := cmd.Execute(context.Background(), []*entities.Module{module}, commands.WriteOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, report.Written)
		assert.Empty(t, spy.WrittenPaths())
	})
}
