package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vkozyrev/ragdex/internal/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status [project-id]",
	Short: "Show a project's indexing state",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Int("runs", 5, "number of recent runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	runLimit, _ := cmd.Flags().GetInt("runs")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	m, err := eng.Manifest(projectID)
	if err != nil {
		return err
	}

	indexed, failed, pending := 0, 0, 0
	for _, rec := range m.Documents {
		switch rec.Status {
		case manifest.StatusIndexed:
			indexed++
		case manifest.StatusFailed:
			failed++
		default:
			pending++
		}
	}

	fmt.Printf("Project %s\n", m.ID)
	fmt.Printf("  Documents: %d (%d indexed, %d failed, %d pending)\n",
		len(m.Documents), indexed, failed, pending)
	fmt.Printf("  Vectors:   %d\n", m.VectorCount)
	if m.LastIndexedAt != nil {
		fmt.Printf("  Last run:  %s\n", m.LastIndexedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if enabled := m.Settings.EnabledStrategies(); len(enabled) > 0 {
		fmt.Printf("  Strategies:")
		for _, sc := range enabled {
			fmt.Printf(" %s(w=%.1f)", sc.ID, sc.Weight)
		}
		fmt.Println()
	}
	if m.Summary != "" {
		fmt.Printf("  Summary:   %s\n", truncate(m.Summary, 200))
	}

	if failed > 0 {
		fmt.Println("\nFailed documents:")
		var paths []string
		for path, rec := range m.Documents {
			if rec.Status == manifest.StatusFailed {
				paths = append(paths, path)
			}
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Printf("  %s: %s\n", path, m.Documents[path].Error)
		}
	}

	runs, err := openRunLog()
	if err != nil {
		return nil // status is still useful without history
	}
	defer runs.Close()

	history, err := runs.ListRuns(context.Background(), projectID, runLimit)
	if err != nil || len(history) == 0 {
		return nil
	}
	fmt.Println("\nRecent runs:")
	for _, r := range history {
		line := fmt.Sprintf("  %s  %-9s indexed=%d failed=%d removed=%d",
			r.StartedAt.Format("2006-01-02 15:04"), r.Status, r.Indexed, r.Failed, r.Removed)
		if r.Error != "" {
			line += "  " + truncate(r.Error, 60)
		}
		fmt.Println(line)
	}
	return nil
}
