package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildvm/buildvm/internal/core/domain"
	"github.com/buildvm/buildvm/internal/shell/registry"
	"github.com/buildvm/buildvm/internal/shell/status"
	"github.com/buildvm/buildvm/internal/shell/watch"
)

func newStatusCmd() *cobra.Command {
	var (
		flagApp      string
		flagEnv      string
		flagNoHealth bool
		flagVerbose  bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show live status for tracked deployments",
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

			updates := a.poller().Refresh(cmd.Context(), deps, status.Options{SkipHealth: flagNoHealth})
			for _, u := range updates {
				dep := u.Deployment
				res := u.Result
				fmt.Fprintf(out, "%-22s %-10s %-12s %s\n", dep.AppName, dep.EnvName, res.Status, dep.URL())
				if res.Err != nil {
					fmt.Fprintf(out, "  error: %v\n", res.Err)
				}
				if flagVerbose {
					fmt.Fprintf(out, "  deployment %s  instance #%d (%s)  provider status %q\n",
						dep.ID, dep.InstanceID, dep.Label, res.ProviderStatus)
					if res.Detail != "" {
						fmt.Fprintf(out, "  %s\n", res.Detail)
					}
					printWatcherIssues(cmd, &dep, res.Status)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagApp, "app", "", "filter by application name")
	cmd.Flags().StringVar(&flagEnv, "env", "", "filter by environment")
	cmd.Flags().BoolVar(&flagNoHealth, "no-health", false, "skip the HTTP health probe")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "show instance detail per deployment")

	return cmd
}

// printWatcherIssues annotates a row with unresolved issues reported by the
// instance's monitoring daemon. The daemon is optional; fetch errors are
// silently skipped.
func printWatcherIssues(cmd *cobra.Command, dep *domain.Deployment, st domain.Status) {
	if dep.Hostname == "" || (st != domain.StatusRunning && st != domain.StatusDegraded) {
		return
	}
	issues, err := watch.NewClient(0).Issues(cmd.Context(), dep.Hostname)
	if err != nil {
		return
	}
	for _, issue := range issues {
		if issue.Resolved {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s", issue.Severity, issue.Message)
		if issue.Recommendation != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s)", issue.Recommendation)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
}
