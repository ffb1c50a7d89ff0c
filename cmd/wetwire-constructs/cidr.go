package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-aws-constructs-go/cidr"
)

func newCidrCmd() *cobra.Command {
	var (
		seed    int
		azCount int
		groups  int
	)

	cmd := &cobra.Command{
		Use:   "cidr",
		Short: "Show the VPC block and subnets allocated for a seed",
		Long: `Cidr prints the block a VPC gets for --seed and the subnets carved from it
for --az-count availability zones and --groups subnet groups.

Examples:
    wetwire-constructs cidr --seed 3
    wetwire-constructs cidr --seed 3 --az-count 3 --groups 3
    wetwire-constructs cidr check 10.1.0.0/16 10.0.10.0/24`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alloc, err := cidr.Allocate(seed, azCount, groups)
			if err != nil {
				return err
			}
			subnets, err := cidr.Subnets(alloc.Block, alloc.SubnetMask, azCount*groups)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "vpc     %s\n", alloc.Block)
			fmt.Fprintf(out, "mask    /%d\n", alloc.SubnetMask)
			for i, s := range subnets {
				fmt.Fprintf(out, "subnet  %-18s group %d az %d\n", s, i/azCount+1, i%azCount+1)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&seed, "seed", 1, "VPC seed (0-255)")
	cmd.Flags().IntVar(&azCount, "az-count", 2, "Availability zones")
	cmd.Flags().IntVar(&groups, "groups", 2, "Subnet groups, e.g. 2 for public and private")

	cmd.AddCommand(&cobra.Command{
		Use:   "check <local> <peer>",
		Short: "Check that two blocks can be peered",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cidr.CheckPeerable(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s and %s can be peered\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}
