package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/ovhdcos/cmd/ovhdcos/handlers"
	"github.com/imamik/ovhdcos/internal/config"
)

// runDeploy is the handler entry point. Replaced in tests.
var runDeploy = handlers.Deploy

// Deploy returns the deploy command.
//
// Environment variables:
//
//	OVH_ENDPOINT, OVH_APPLICATION_KEY, OVH_APPLICATION_SECRET, OVH_CONSUMER_KEY:
//	OVH API credentials (a .env file in the working directory is read first)
func Deploy() *cobra.Command {
	opts := config.NewOptions()
	var logOpts handlers.LogOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision instances, install DC/OS and tear everything down",
		Long: `Deploy requests masters+agents instances in one OVH project region,
waits until all of them accept ssh, prepares them and runs the DC/OS
installer phases (genconf, install-prereqs, preflight, deploy, postflight).

The genconf directory under --workdir must contain ip-detect and ssh_key
before any instance is requested. ssh_key is the private key used to reach
the instances. The generated config.yaml is written next to them.

Every instance is deleted when the command exits, including on errors and
interrupts. With --hold (the default) the cluster stays up
after a successful install until you confirm destruction.

Example:
  ovhdcos deploy --project "My Project" --ssh-key deploy --masters 1 --agents 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd.Context(), opts, logOpts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Project, "project", "", "OVH project description (required)")
	f.StringVar(&opts.SSHKey, "ssh-key", "", "Name of the ssh key registered in the project (required)")
	f.IntVar(&opts.Masters, "masters", opts.Masters, "Number of master instances (required)")
	f.IntVar(&opts.Agents, "agents", opts.Agents, "Number of agent instances (required)")
	f.StringVar(&opts.Region, "region", opts.Region, "Region to provision in")
	f.StringVar(&opts.Flavor, "flavor", opts.Flavor, "Instance flavor name")
	f.StringVar(&opts.Image, "image", opts.Image, "Instance image name")
	f.StringVar(&opts.SSHUser, "ssh-user", opts.SSHUser, "Login user of the image")
	f.StringVar(&opts.Name, "name", opts.Name, "Name given to the instances")
	f.StringVar(&opts.InstallerURL, "url", opts.InstallerURL, "Installer location (http(s):// or s3://bucket/key)")
	f.StringVar(&opts.WorkDir, "workdir", opts.WorkDir, "Directory the installer is downloaded to and run from; must contain genconf/ip-detect and genconf/ssh_key")
	f.DurationVar(&opts.PollInterval, "poll-interval", opts.PollInterval, "Delay between instance status polls")
	f.DurationVar(&opts.ReadyTimeout, "ready-timeout", opts.ReadyTimeout, "Deadline for all instances to become ready (0 disables)")
	f.BoolVar(&opts.Hold, "hold", opts.Hold, "Keep the cluster up after a successful install until confirmed")
	f.StringVar(&opts.PushgatewayURL, "pushgateway", "", "Prometheus Pushgateway URL to push run metrics to")
	f.StringVar(&logOpts.Format, "log-format", handlers.LogFormatText, "Log format: text or json")
	f.BoolVarP(&logOpts.Verbose, "verbose", "v", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("ssh-key")
	_ = cmd.MarkFlagRequired("masters")
	_ = cmd.MarkFlagRequired("agents")

	return cmd
}
