package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudbeacon/driftlog/internal/output"
	"github.com/cloudbeacon/driftlog/internal/runner"
	"github.com/cloudbeacon/driftlog/internal/store"
)

func newCollectCommand() *cobra.Command {
	var services []string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect resource snapshots and reconcile them into the store",
		Long: `Assume the configured role in every account, enumerate the requested
services in every region, and reconcile the snapshots. Unit failures
are reported in the summary without failing the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, services)
		},
	}

	cmd.Flags().StringSliceVar(&services, "services", nil,
		"services to collect (default from config)")

	return cmd
}

func runCollect(cmd *cobra.Command, services []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	summary := runner.New(cfg, st, log).Run(cmd.Context(), services)
	output.NewRenderer(os.Stdout, noColor).RenderSummary(summary)

	return nil
}
