package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDestroyCmd() *cobra.Command {
	var flagYes bool

	cmd := &cobra.Command{
		Use:   "destroy <deployment-id>",
		Short: "Delete a deployment's instance and tracking records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(true)
			if err != nil {
				return err
			}

			dep, err := a.registry().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !flagYes {
				fmt.Fprintf(out, "Destroy %s (%s/%s, instance #%d)? [y/N] ",
					dep.ID, dep.AppName, dep.EnvName, dep.InstanceID)
				reader := bufio.NewReader(cmd.InOrStdin())
				line, _ := reader.ReadString('\n')
				if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			if err := a.provisioner().Destroy(cmd.Context(), dep); err != nil {
				return err
			}
			fmt.Fprintf(out, "Destroyed deployment %s (instance #%d).\n", dep.ID, dep.InstanceID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
