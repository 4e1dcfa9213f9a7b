package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildvm/buildvm/internal/shell/registry"
)

func newListCmd() *cobra.Command {
	var (
		flagApp string
		flagEnv string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(true)
			if err != nil {
				return err
			}

			deps, err := a.registry().List(cmd.Context(), registry.Filter{App: flagApp, Env: flagEnv})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(deps) == 0 {
				fmt.Fprintln(out, "No deployments found.")
				return nil
			}

			fmt.Fprintf(out, "%-10s %-22s %-10s %-12s %-16s %s\n",
				"ID", "APP", "ENV", "REGION", "CREATED", "HOSTNAME")
			for _, dep := range deps {
				created := ""
				if !dep.CreatedAt.IsZero() {
					created = dep.CreatedAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(out, "%-10s %-22s %-10s %-12s %-16s %s\n",
					dep.ID, dep.AppName, dep.EnvName, dep.Region, created, dep.Hostname)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagApp, "app", "", "filter by application name")
	cmd.Flags().StringVar(&flagEnv, "env", "", "filter by environment")

	return cmd
}
