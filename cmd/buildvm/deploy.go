package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildvm/buildvm/internal/core/template"
	"github.com/buildvm/buildvm/internal/shell/provision"
)

func newDeployCmd() *cobra.Command {
	var (
		flagRegion   string
		flagType     string
		flagImage    string
		flagApp      string
		flagEnv      string
		flagEnvFile  string
		flagRootPass string
		flagWait     bool
	)

	cmd := &cobra.Command{
		Use:   "deploy [dir]",
		Short: "Provision a VM from the directory's deploy.yml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			a, err := loadApp(true)
			if err != nil {
				return err
			}

			tpl, err := template.Load(dir)
			if err != nil {
				return err
			}

			linodeCfg := tpl.Deploy.Linode
			region := flagRegion
			if region == "" && linodeCfg.RegionDefault == "" {
				region = a.cfg.Provision.Region
			}
			instanceType := flagType
			if instanceType == "" && linodeCfg.TypeDefault == "" {
				instanceType = a.cfg.Provision.Type
			}
			image := flagImage
			if image == "" && linodeCfg.Image == "" {
				image = a.cfg.Provision.Image
			}

			result, err := a.provisioner().Provision(cmd.Context(), provision.Request{
				Directory:    dir,
				Template:     tpl,
				AppName:      flagApp,
				EnvName:      flagEnv,
				Region:       region,
				InstanceType: instanceType,
				Image:        image,
				EnvFile:      flagEnvFile,
				RootPass:     flagRootPass,
				Wait:         flagWait,
			})
			if err != nil {
				return err
			}

			dep := result.Deployment
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deployed %s (%s)\n", dep.AppName, dep.EnvName)
			fmt.Fprintf(out, "  Deployment ID: %s\n", dep.ID)
			fmt.Fprintf(out, "  Instance:      %s (#%d, %s, %s)\n", dep.Label, dep.InstanceID, dep.Region, dep.InstanceType)
			for _, ip := range dep.IPv4 {
				fmt.Fprintf(out, "  IPv4:          %s\n", ip)
			}
			fmt.Fprintf(out, "  URL:           %s\n", dep.URL())
			if result.PasswordFile != "" {
				fmt.Fprintf(out, "  Root password saved to %s\n", result.PasswordFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagRegion, "region", "", "target region (overrides template default)")
	cmd.Flags().StringVar(&flagType, "type", "", "instance type (overrides template default)")
	cmd.Flags().StringVar(&flagImage, "image", "", "base image")
	cmd.Flags().StringVar(&flagApp, "app", "", "application name (defaults to template name)")
	cmd.Flags().StringVar(&flagEnv, "env", "", "environment name (defaults to \"default\")")
	cmd.Flags().StringVar(&flagEnvFile, "env-file", "", "project env file (defaults to .env)")
	cmd.Flags().StringVar(&flagRootPass, "root-pass", "", "root password (generated when empty)")
	cmd.Flags().BoolVar(&flagWait, "wait", false, "wait for the instance to reach running state")

	return cmd
}
