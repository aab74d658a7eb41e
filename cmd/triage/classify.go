package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartclass/triage/internal/triage"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Classify a single message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		useSemantic, _ := cmd.Flags().GetBool("semantic")
		author, _ := cmd.Flags().GetString("author")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		p, err := loadPipeline(ctx, cmd, useSemantic)
		if err != nil {
			return err
		}
		defer p.Close()

		msg, err := triage.NewMessage(strings.Join(args, " "), author, time.Now().UTC())
		if err != nil {
			return err
		}

		result := p.engine.Triage(ctx, msg)

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	classifyCmd.Flags().Bool("semantic", false, "Validate with the configured semantic analyzer")
	classifyCmd.Flags().String("author", "", "Author identifier")
}

func printResult(w io.Writer, r triage.Result) {
	fmt.Fprintf(w, "Outcome:     %s\n", r.Decision.Outcome)
	fmt.Fprintf(w, "Label:       %s\n", r.Hybrid.Label)
	fmt.Fprintf(w, "Confidence:  %.0f%%\n", r.Hybrid.Confidence*100)
	fmt.Fprintf(w, "Reason:      %s\n", r.Hybrid.Reason)
	fmt.Fprintf(w, "Lexical:     %s (score %.2f, %d%%)\n", r.Local.Label, r.Local.Score, r.Local.Confidence)
	if !r.Hybrid.Fallback {
		fmt.Fprintf(w, "AI score:    %.2f\n", r.Hybrid.AIScore)
	}
	if r.Decision.Instruction != "" {
		fmt.Fprintf(w, "Reply:       %s\n", r.Decision.Instruction)
	}
}
