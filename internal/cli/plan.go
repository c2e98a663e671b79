package cli

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/moldplan/moldplan/internal/core"
	"github.com/moldplan/moldplan/internal/domain"
)

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringP("file", "f", "", "Path to a JSON PlanRequest (required)")
	planCmd.Flags().Int64("seed", 0, "Random seed (0 picks a time-based seed)")
	planCmd.Flags().StringP("out", "o", "", "Write the PlanResult JSON here instead of stdout")
	planCmd.MarkFlagRequired("file")
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Optimize one plan request and print the resulting schedule",
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	seed, _ := cmd.Flags().GetInt64("seed")
	out, _ := cmd.Flags().GetString("out")

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read plan request: %w", err)
	}
	var req domain.PlanRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse plan request: %w", err)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	result, err := core.Optimize(req, rng)
	if err != nil {
		return err
	}

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan result: %w", err)
	}

	if out == "" {
		fmt.Fprintln(os.Stdout, string(resultJSON))
		return nil
	}
	if err := os.WriteFile(out, resultJSON, 0o644); err != nil {
		return fmt.Errorf("write plan result: %w", err)
	}
	fmt.Fprintf(os.Stdout, "score=%.2f unmet_components=%d -> %s\n", result.Score, len(result.Unmet), out)
	return nil
}
