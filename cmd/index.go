package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkozyrev/ragdex/internal/progress"
	"github.com/vkozyrev/ragdex/internal/runlog"
)

var indexCmd = &cobra.Command{
	Use:   "index [project-id]",
	Short: "Index a project's documents",
	Long: `Scans the project's documents folder, indexes new and changed documents
into every enabled retrieval strategy, and purges vectors of removed ones.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Bool("force", false, "clear all vectors and re-index everything")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	force, _ := cmd.Flags().GetBool("force")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	progress.Subscribe(eng.Events(), progress.NewReporter())

	runs, err := openRunLog()
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer runs.Close()

	ctx := context.Background()
	started := time.Now().UTC()
	res, err := eng.IndexProject(ctx, projectID, force)
	if err != nil {
		_, _ = runs.Record(ctx, runlog.Run{
			ProjectID:  projectID,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Status:     runlog.StatusError,
			Forced:     force,
			Error:      err.Error(),
		})
		return err
	}

	if _, err := runs.Record(ctx, runlog.Run{
		ProjectID:   projectID,
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Status:      runlog.StatusCompleted,
		Forced:      force,
		Total:       res.Total,
		Indexed:     res.Indexed,
		Failed:      res.Failed,
		Removed:     res.Removed,
		VectorCount: res.VectorCount,
	}); err != nil {
		fmt.Printf("Warning: run not recorded: %v\n", err)
	}

	fmt.Printf("Indexed %d, failed %d, removed %d, unchanged %d (%.1fs)\n",
		res.Indexed, res.Failed, res.Removed, res.Unchanged, res.Duration.Seconds())
	fmt.Printf("Project now holds %d vectors.\n", res.VectorCount)
	return nil
}
