package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-aws-constructs-go/internal/graph"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat      string
		includeParameters bool
		groupBy           string
	)

	cmd := &cobra.Command{
		Use:   "graph <stack>",
		Short: "Generate DOT graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph showing resource dependencies.

The output can be rendered with Graphviz:
    wetwire-constructs graph eks-rds | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    wetwire-constructs graph vpc -f mermaid

Examples:
    wetwire-constructs graph vpc
    wetwire-constructs graph eks -p                  # include parameters
    wetwire-constructs graph stitcher -g construct   # cluster by construct
    wetwire-constructs graph stitcher -g service     # cluster by AWS service`,
		Args: stackArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := &graph.Generator{IncludeParameters: includeParameters}
			switch outputFormat {
			case "dot":
				gen.Format = graph.FormatDOT
			case "mermaid":
				gen.Format = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}
			switch g := graph.Grouping(groupBy); g {
			case graph.GroupNone, graph.GroupService, graph.GroupConstruct:
				gen.GroupBy = g
			default:
				return fmt.Errorf("unknown grouping: %s (use 'service' or 'construct')", groupBy)
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				tmpl, nodes, err := a.synth(args[0])
				if err != nil {
					return err
				}
				return gen.Generate(nodes, tmpl.Parameters, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&includeParameters, "include-parameters", "p", false, "Include parameter nodes in the graph")
	cmd.Flags().StringVarP(&groupBy, "group", "g", "", "Cluster resources by service or construct")

	return cmd
}
