package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudbeacon/driftlog/internal/store"
)

func newChangesCommand() *cobra.Command {
	var resourceType string

	cmd := &cobra.Command{
		Use:   "changes <resource-id>",
		Short: "Show the recorded change history for one resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(cfg.Database.Path, log)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			entries, err := st.ChangesFor(cmd.Context(), strings.ToUpper(resourceType), args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("no recorded changes for %s %s\n", strings.ToUpper(resourceType), args[0])
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %s.%s: %q -> %q  by %s (account %s, %s)\n",
					e.ChangedAt, e.ResourceID, e.FieldName, e.OldValue, e.NewValue,
					e.ChangedBy, e.AccountID, e.Region)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resourceType, "type", "ec2",
		"resource type (ec2, rds, redshift, vpc, subnet, eks, lambda, athena)")

	return cmd
}
