package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/nonsnapshot/internal/domain/commands"
	"github.com/rios0rios0/nonsnapshot/internal/domain/entities"
)

// runInput is what every controller reads from the command line.
type runInput struct {
	settings *entities.Settings
	opts     commands.ComputeOptions
	dryRun   bool
}

// readRunInput resolves the project directory and the configuration from
// the flags and arguments of cmd.
func readRunInput(cmd *cobra.Command, args []string) (*runInput, error) {
	configPath, _ := cmd.Flags().GetString("config")
	revision, _ := cmd.Flags().GetString("revision")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	projectDir := "."
	if len(args) > 0 {
		projectDir = args[0]
	}

	settings, err := loadSettings(configPath, projectDir)
	if err != nil {
		return nil, err
	}

	return &runInput{
		settings: settings,
		opts: commands.ComputeOptions{
			ProjectDir: projectDir,
			Revision:   revision,
		},
		dryRun: dryRun,
	}, nil
}

func loadSettings(configPath, projectDir string) (*entities.Settings, error) {
	if configPath == "" {
		found, err := entities.FindConfigFile(projectDir)
		if err != nil {
			logger.Infof("No config file found, using defaults")
			return entities.DefaultSettings(), nil
		}
		configPath = found
	}

	logger.Infof("Using config file: %s", configPath)
	return entities.NewSettings(configPath)
}

// logSummary prints the tree size and every module about to be updated.
func logSummary(modules []*entities.Module) {
	var updated []*entities.Module
	for _, m := range modules {
		if m.IsWritable() {
			updated = append(updated, m)
		}
	}

	logger.Infof("Modules in tree: %d, thereof about to be updated: %d", len(modules), len(updated))
	for _, m := range updated {
		logger.Infof("  %s: %s -> %s", m.Coordinate.Key(), m.Coordinate.Version, m.NewVersion())
	}
}
