// Command wetwire-constructs synthesizes CloudFormation templates for the
// ready-made stacks described in wetwire.yaml.
//
// Usage:
//
//	wetwire-constructs stacks                 List the stacks that can be synthesized
//	wetwire-constructs synth vpc              Print the vpc stack template
//	wetwire-constructs synth --all -d out     Write every stack to out/
//	wetwire-constructs graph eks-rds          Show resource dependencies
//	wetwire-constructs cidr --seed 3          Show the VPC block and subnets for a seed
//	wetwire-constructs version                Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "wetwire-constructs",
		Short: "Synthesize CloudFormation stacks from reusable constructs",
		Long: `wetwire-constructs synthesizes CloudFormation templates for networking,
container, Kubernetes and data stacks built from Go constructs.

Stacks are configured in wetwire.yaml:

    name: shop
    vpc:
      seed: 3
      azCount: 2
    eks:
      clusterName: shop

Then synthesize a template:

    wetwire-constructs synth vpc -o vpc.json`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: wetwire.yaml when present)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides logging.level)")
	flags.BoolVar(&opts.lookup, "lookup", false, "Read existing infrastructure from AWS (overrides lookup.enabled)")
	flags.StringVar(&opts.region, "region", "", "AWS region for lookups (overrides region)")
	flags.StringVar(&opts.profile, "profile", "", "AWS shared config profile for lookups")

	rootCmd.AddCommand(
		newSynthCmd(opts),
		newListCmd(opts),
		newGraphCmd(opts),
		newValidateCmd(opts),
		newDiffCmd(opts),
		newWatchCmd(opts),
		newStacksCmd(),
		newCidrCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return rootCmd
}
