package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var flagConfig string

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "buildvm",
		Short: "Deploy containerized apps to cloud VMs",
		Long: `buildvm provisions single-VM deployments from a deploy.yml template.

It composes cloud-init from declared capabilities, creates the instance,
and tracks every deployment through cloud resource tags so that no local
database is required.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (env: BUILDVM_*)")

	root.AddCommand(newDeployCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newDestroyCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCleanupCmd())

	return root
}
