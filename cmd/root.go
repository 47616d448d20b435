package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vkozyrev/ragdex/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ragdex",
	Short: "Multi-strategy document indexing and retrieval",
	Long: `Ragdex indexes document collections into per-strategy vector tables and
answers natural language queries by searching every strategy in parallel
and fusing the ranked results.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigPath(), "config file path")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
