package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/internal/differ"
	"github.com/lex00/wetwire-aws-constructs-go/stacks"
)

func newDiffCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <stack|template> <template>",
		Short: "Compare a stack or template with a template file",
		Long: `Diff compares two CloudFormation templates resource by resource.

The first argument is a registered stack name, synthesized from the current
config, or a template file. The second is a JSON or YAML template file,
typically the template deployed last.

Examples:
    wetwire-constructs diff vpc deployed/vpc.json
    wetwire-constructs diff old.yaml new.yaml --ignore-order`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			diffOpts := differ.Options{IgnoreOrder: ignoreOrder}
			if _, ok := stacks.Default()[args[0]]; !ok {
				result, err := differ.CompareFiles(args[0], args[1], diffOpts)
				if err != nil {
					return err
				}
				return outputDiff(result, outputFormat, cmd.OutOrStdout())
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				synthesized, _, err := a.synth(args[0])
				if err != nil {
					return err
				}
				current, err := differ.Normalize(synthesized)
				if err != nil {
					return err
				}
				previous, err := differ.LoadTemplate(args[1])
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", args[1], err)
				}
				result, err := differ.Compare(previous, current, diffOpts)
				if err != nil {
					return err
				}
				return outputDiff(result, outputFormat, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore list element order")

	return cmd
}

type diffOutput struct {
	Diff       wetwire.TemplateDiff `json:"diff"`
	Summary    wetwire.DiffSummary  `json:"summary"`
	Outputs    []string             `json:"outputs,omitempty"`
	Parameters []string             `json:"parameters,omitempty"`
}

func outputDiff(result *differ.Result, format string, w io.Writer) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(diffOutput{
			Diff:       result.Diff,
			Summary:    result.Summary,
			Outputs:    result.Outputs,
			Parameters: result.Parameters,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Empty() {
			fmt.Fprintln(w, "No differences")
			return nil
		}
		for _, e := range result.Diff.Added {
			fmt.Fprintf(w, "+ %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Removed {
			fmt.Fprintf(w, "- %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Modified {
			fmt.Fprintf(w, "~ %s (%s)\n", e.Resource, e.Type)
			for _, c := range e.Changes {
				fmt.Fprintf(w, "    %s\n", c)
			}
		}
		for _, c := range result.Parameters {
			fmt.Fprintf(w, "  parameter %s\n", c)
		}
		for _, c := range result.Outputs {
			fmt.Fprintf(w, "  output %s\n", c)
		}
		s := result.Summary
		fmt.Fprintf(w, "\n%d added, %d removed, %d modified\n", s.Added, s.Removed, s.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
