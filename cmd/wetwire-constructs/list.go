package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list <stack>",
		Short: "List the resources of a stack",
		Long: `List synthesizes a stack and displays its resources with the construct
that added each one.

Examples:
    wetwire-constructs list vpc
    wetwire-constructs list ecs-rds-redis --format json`,
		Args: stackArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				_, nodes, err := a.synth(args[0])
				if err != nil {
					return err
				}
				return outputListResult(listResult(args[0], nodes), outputFormat, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func listResult(name string, nodes []wetwire.ResourceNode) wetwire.ListResult {
	result := wetwire.ListResult{
		Stack:     name,
		Resources: make([]wetwire.ListResource, 0, len(nodes)),
	}
	for _, n := range nodes {
		result.Resources = append(result.Resources, wetwire.ListResource{
			Name:      n.LogicalID,
			Type:      n.Type,
			Construct: n.Construct,
		})
	}
	sort.Slice(result.Resources, func(i, j int) bool {
		return result.Resources[i].Name < result.Resources[j].Name
	})
	return result
}

func outputListResult(result wetwire.ListResult, format string, w io.Writer) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if len(result.Resources) == 0 {
			fmt.Fprintln(w, "No resources found.")
			return nil
		}

		fmt.Fprintf(w, "Stack %s (%d resources):\n\n", result.Stack, len(result.Resources))
		for _, res := range result.Resources {
			construct := res.Construct
			if construct == "" {
				construct = "-"
			}
			fmt.Fprintf(w, "  %-50s %-45s %s\n", res.Name, res.Type, construct)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
