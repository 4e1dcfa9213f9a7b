package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove metadata for instances that no longer exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(true)
			if err != nil {
				return err
			}

			removed, err := a.registry().CleanupStaleMetadata(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Metadata cache is clean.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale metadata entries.\n", removed)
			return nil
		},
	}

	return cmd
}
