package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// eventSources maps the short names accepted by the events command to
// the pseudo-service names the runner dispatches on.
var eventSources = map[string]string{
	"ec2": "ec2_events",
	"rds": "rds_events",
	"vpc": "vpc_events",
}

func newEventsCommand() *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Collect and persist CloudTrail events only",
		Long: `Fetch recent CloudTrail events for the given sources across every
account and region, and persist them for change attribution. Skips the
resource snapshot reconciliation entirely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			services := make([]string, 0, len(sources))
			for _, src := range sources {
				svc, ok := eventSources[src]
				if !ok {
					return fmt.Errorf("unknown event source %q (have: ec2, rds, vpc)", src)
				}
				services = append(services, svc)
			}
			return runCollect(cmd, services)
		},
	}

	cmd.Flags().StringSliceVar(&sources, "services", []string{"ec2", "rds", "vpc"},
		"event sources to collect (ec2, rds, vpc)")

	return cmd
}
