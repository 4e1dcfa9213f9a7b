package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildvm/buildvm/internal/core/template"
	"github.com/buildvm/buildvm/internal/shell/provision"
)

func newRenderCmd() *cobra.Command {
	var (
		flagApp     string
		flagEnv     string
		flagEnvFile string
	)

	cmd := &cobra.Command{
		Use:   "render [dir]",
		Short: "Print the cloud-init document without creating anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			a, err := loadApp(false)
			if err != nil {
				return err
			}

			tpl, err := template.Load(dir)
			if err != nil {
				return err
			}

			doc, err := a.provisioner().RenderDocument(provision.Request{
				Directory:    dir,
				Template:     tpl,
				AppName:      flagApp,
				EnvName:      flagEnv,
				EnvFile:      flagEnvFile,
				Region:       a.cfg.Provision.Region,
				InstanceType: a.cfg.Provision.Type,
				Image:        a.cfg.Provision.Image,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagApp, "app", "", "application name (defaults to template name)")
	cmd.Flags().StringVar(&flagEnv, "env", "", "environment name (defaults to \"default\")")
	cmd.Flags().StringVar(&flagEnvFile, "env-file", "", "project env file (defaults to .env)")

	return cmd
}
