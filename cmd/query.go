package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vkozyrev/ragdex/internal/engine"
)

var queryCmd = &cobra.Command{
	Use:   "query [project-id] [question]",
	Short: "Search a project's indexed documents",
	Long: `Embeds the query once per enabled retrieval strategy, searches every
strategy table in parallel, and fuses the ranked results.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Int("top-k", engine.DefaultTopK, "maximum number of results")
	queryCmd.Flags().Float32("min-score", 0, "minimum similarity score")
	queryCmd.Flags().String("content-type", "", "filter results by content type")
	queryCmd.Flags().String("fusion", "", "fusion method override: rrf or weighted")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	projectID, question := args[0], args[1]

	topK, _ := cmd.Flags().GetInt("top-k")
	minScore, _ := cmd.Flags().GetFloat32("min-score")
	contentType, _ := cmd.Flags().GetString("content-type")
	fusionMethod, _ := cmd.Flags().GetString("fusion")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	resp, err := eng.Query(context.Background(), projectID, engine.QueryRequest{
		Query:        question,
		TopK:         topK,
		MinScore:     minScore,
		ContentType:  contentType,
		FusionMethod: fusionMethod,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results in %dms", len(resp.Results), resp.QueryTimeMs)
	if len(resp.StrategiesUsed) > 0 {
		fmt.Printf(" (strategies: %s, fusion: %s)",
			strings.Join(resp.StrategiesUsed, ", "), resp.FusionMethod)
	}
	fmt.Print("\n\n")

	for i, r := range resp.Results {
		fmt.Printf("  %d. [%.4f] %s (chunk %d)\n", i+1, r.Score, r.DocumentPath, r.ChunkIndex)
		if len(r.StrategyScores) > 0 {
			var parts []string
			for id, score := range r.StrategyScores {
				parts = append(parts, fmt.Sprintf("%s=%.3f", id, score))
			}
			fmt.Printf("     Strategies: %s\n", strings.Join(parts, " "))
		}
		fmt.Printf("     %s\n\n", truncate(r.Text, 160))
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
