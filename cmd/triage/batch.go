package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smartclass/triage/internal/triage"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Classify one message per line from a file (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		useSemantic, _ := cmd.Flags().GetBool("semantic")
		workers, _ := cmd.Flags().GetInt("workers")
		asJSON, _ := cmd.Flags().GetBool("json")

		lines, err := readLines(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No messages found.")
			return nil
		}

		ctx := cmd.Context()
		p, err := loadPipeline(ctx, cmd, useSemantic)
		if err != nil {
			return err
		}
		defer p.Close()

		rows, err := triageAll(ctx, p.engine, lines, workers)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		printBatch(cmd.OutOrStdout(), rows)
		return nil
	},
}

func init() {
	batchCmd.Flags().Bool("semantic", false, "Validate with the configured semantic analyzer")
	batchCmd.Flags().Int("workers", runtime.NumCPU(), "Concurrent messages in flight")
}

// inputLine is a non-blank input line with its 1-based position in the file.
type inputLine struct {
	No   int
	Text string
}

// batchRow is one line of batch input and its result. Error is set when the
// line has no usable text after sanitization.
type batchRow struct {
	Line   int            `json:"line"`
	Text   string         `json:"text"`
	Result *triage.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// readLines returns the non-blank lines of path, or of stdin for "-".
// Blank lines are skipped but still advance the line number.
func readLines(stdin io.Reader, path string) ([]inputLine, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var lines []inputLine
	scanner := bufio.NewScanner(r)
	for no := 1; scanner.Scan(); no++ {
		if text := strings.TrimSpace(scanner.Text()); text != "" {
			lines = append(lines, inputLine{No: no, Text: text})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// triageAll runs every line through the engine with at most workers in
// flight. Results keep input order.
func triageAll(ctx context.Context, engine *triage.Engine, lines []inputLine, workers int) ([]batchRow, error) {
	if workers < 1 {
		workers = 1
	}

	rows := make([]batchRow, len(lines))
	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, line := range lines {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			rows[i] = batchRow{Line: line.No, Text: line.Text}

			msg, err := triage.NewMessage(line.Text, triage.AnonymousAuthor, now)
			if err != nil {
				rows[i].Error = err.Error()
				return nil
			}

			result := engine.Triage(gctx, msg)
			rows[i].Result = &result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func printBatch(w io.Writer, rows []batchRow) {
	fmt.Fprintf(w, "%-5s  %-14s  %-10s  %-5s  %s\n", "Line", "Outcome", "Label", "Conf", "Text")
	fmt.Fprintln(w, strings.Repeat("─", 80))

	counts := make(map[triage.Outcome]int)
	failed := 0

	for _, row := range rows {
		text := truncate(row.Text, 45)
		if row.Result == nil {
			failed++
			fmt.Fprintf(w, "%-5d  %-14s  %-10s  %-5s  %s\n", row.Line, "ERROR", "-", "-", text)
			continue
		}

		r := row.Result
		counts[r.Decision.Outcome]++
		fmt.Fprintf(w, "%-5d  %-14s  %-10s  %4.0f%%  %s\n",
			row.Line, r.Decision.Outcome, r.Hybrid.Label, r.Hybrid.Confidence*100, text)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d messages: %d accepted, %d vague, %d ignored",
		len(rows),
		counts[triage.OutcomeAccepted],
		counts[triage.OutcomeRejectedVague],
		counts[triage.OutcomeIgnored],
	)
	if failed > 0 {
		fmt.Fprintf(w, ", %d unreadable", failed)
	}
	fmt.Fprintln(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
