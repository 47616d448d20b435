package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vkozyrev/ragdex/internal/config"
	"github.com/vkozyrev/ragdex/internal/manifest"
	"github.com/vkozyrev/ragdex/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Configure ragdex, or create a new project",
	Long: `Without arguments, runs the interactive first-time setup and writes the
configuration file. With a project name, creates a new project directory
and walks through its indexing settings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_, err := config.RunWizard()
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		// First project creation without prior setup runs the wizard inline.
		if _, statErr := os.Stat(cfgFile); os.IsNotExist(statErr) {
			if cfg, err = config.RunWizard(); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	name := args[0]
	projectID := uuid.NewString()

	settings, err := cfg.ProjectWizard()
	if err != nil {
		return fmt.Errorf("project settings: %w", err)
	}

	layout := project.NewLayout(cfg.ProjectsRoot)
	if err := layout.Create(projectID); err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	manifests := manifest.NewStore(cfg.ProjectsRoot)
	m, err := manifests.Load(projectID)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	m.Settings = settings
	if err := manifests.Save(m); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	fmt.Printf("\nProject %q created.\n", name)
	fmt.Printf("  ID:        %s\n", projectID)
	fmt.Printf("  Documents: %s\n", layout.DocumentsDir(projectID))
	fmt.Printf("\nDrop files into the documents folder, then run:\n")
	fmt.Printf("  ragdex index %s\n", projectID)
	return nil
}
