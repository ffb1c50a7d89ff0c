package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-aws-constructs-go/stacks"
)

func newStacksCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "stacks",
		Short: "List the stacks that can be synthesized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := stacks.Default()
			switch outputFormat {
			case "json":
				type entry struct {
					Name        string `json:"name"`
					Description string `json:"description"`
					NeedsLookup bool   `json:"needsLookup"`
				}
				entries := make([]entry, 0, len(registry))
				for _, name := range registry.Names() {
					e := registry[name]
					entries = append(entries, entry{e.Name, e.Description, e.NeedsLookup})
				}
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "text":
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, name := range registry.Names() {
					e := registry[name]
					lookup := ""
					if e.NeedsLookup {
						lookup = "(lookup)"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Description, lookup)
				}
				return w.Flush()
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}
