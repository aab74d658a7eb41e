package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartclass/triage/internal/messages"
	"github.com/smartclass/triage/pkg/database"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Send the daily question summary to the instructor",
	RunE: func(cmd *cobra.Command, args []string) error {
		dateFlag, _ := cmd.Flags().GetString("date")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		asJSON, _ := cmd.Flags().GetBool("json")

		date := time.Now().UTC()
		if dateFlag != "" {
			d, err := time.Parse(time.DateOnly, dateFlag)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateFlag, err)
			}
			date = d
		}

		ctx := cmd.Context()
		p, err := loadPipeline(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer p.Close()

		db, err := database.New(&p.cfg.Database, p.logger)
		if err != nil {
			return err
		}
		conn := db.Connection()
		defer conn.Close()

		sys := messages.New(conn, p.engine, p.notifier, nil, p.logger, p.cfg.API.Pagination)

		stats, err := sys.Stats(ctx, messages.Day(date))
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		summary := stats.Summary(date)

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return err
			}
		} else {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date:        %s\n", date.Format(time.DateOnly))
			fmt.Fprintf(out, "Questions:   %d\n", summary.Questions)
			fmt.Fprintf(out, "Answered:    %d\n", summary.Answered)
			fmt.Fprintf(out, "Unanswered:  %d\n", summary.Unanswered)
			fmt.Fprintf(out, "Corrected:   %d\n", summary.Corrected)
			fmt.Fprintf(out, "Response:    %d%%\n", summary.ResponseRate())
		}

		if dryRun {
			return nil
		}
		return p.notifier.DailySummary(ctx, summary)
	},
}

func init() {
	summaryCmd.Flags().String("date", "", "Day to summarize as YYYY-MM-DD (default today, UTC)")
	summaryCmd.Flags().Bool("dry-run", false, "Print the summary without sending it")
}
