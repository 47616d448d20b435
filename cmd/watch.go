package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkozyrev/ragdex/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [project-id]",
	Short: "Watch a project's documents folder and re-index on changes",
	Long: `Runs an initial indexing pass, then watches the documents folder and
re-indexes after changes settle. Stops on Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	projectID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, layout, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bring the index up to date before watching.
	if _, err := eng.IndexProject(ctx, projectID, false); err != nil {
		return err
	}

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	w, err := watcher.New(layout, eng, projectID, debounce)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", layout.DocumentsDir(projectID))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("\nStopping watcher.")
	return nil
}
