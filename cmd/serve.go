package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkozyrev/ragdex/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serves indexing, querying, project status, and run history over HTTP for
every project under the configured projects root.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	allowAll, _ := cmd.Flags().GetBool("allow-all-origins")

	eng, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	runs, err := openRunLog()
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer runs.Close()

	srv := server.New(server.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		AllowAll: allowAll,
	}, eng, runs)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		fmt.Println("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
