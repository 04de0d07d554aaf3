package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/cloudbeacon/driftlog/internal/runner"
)

// Renderer writes run summaries for terminal consumption.
type Renderer struct {
	writer  io.Writer
	noColor bool
}

func NewRenderer(w io.Writer, noColor bool) *Renderer {
	return &Renderer{writer: w, noColor: noColor}
}

// RenderSummary prints the per-service messages, the per-account error
// counts and the total elapsed time of one collection run.
func (r *Renderer) RenderSummary(summary runner.RunSummary) {
	fmt.Fprintln(r.writer, r.colorize("=== Results ===", color.FgCyan, color.Bold))
	for _, msg := range summary.Messages {
		if strings.Contains(msg, "failed") {
			fmt.Fprintln(r.writer, r.colorize(msg, color.FgRed))
		} else if strings.Contains(msg, "no data") {
			fmt.Fprintln(r.writer, r.colorize(msg, color.FgYellow))
		} else {
			fmt.Fprintln(r.writer, msg)
		}
	}

	if len(summary.Errors) > 0 {
		fmt.Fprintln(r.writer)
		fmt.Fprintln(r.writer, r.colorize(
			fmt.Sprintf("Errors in %d accounts:", len(summary.Errors)), color.FgRed, color.Bold))

		accounts := make([]string, 0, len(summary.Errors))
		for account := range summary.Errors {
			accounts = append(accounts, account)
		}
		sort.Strings(accounts)
		for _, account := range accounts {
			errs := summary.Errors[account]
			fmt.Fprintln(r.writer, r.colorize(
				fmt.Sprintf("- account %s: %d errors", account, len(errs)), color.FgRed))
			for _, e := range errs {
				fmt.Fprintf(r.writer, "    %s\n", e)
			}
		}
	}

	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, r.colorize(
		fmt.Sprintf("Completed in %s", summary.Elapsed.Round(10*time.Millisecond)), color.FgGreen))
}

func (r *Renderer) colorize(text string, attrs ...color.Attribute) string {
	if r.noColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}
