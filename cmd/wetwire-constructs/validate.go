package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/internal/validation"
)

var errValidationFailed = errors.New("validation failed")

// newValidateCmd creates the "validate" subcommand for checking synthesized templates.
func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat string
		skipLint     bool
		ignoreRules  []string
	)

	cmd := &cobra.Command{
		Use:   "validate <stack>",
		Short: "Validate a synthesized template",
		Long: `Validate synthesizes a stack and checks the template.

Checks performed:
  - Reference validity: Ref, GetAtt, Sub and DependsOn point to defined resources
  - Exports: output export names are unique
  - cfn-lint: resource properties against the CloudFormation schema

Registry and custom resource types are not linted.

Examples:
    wetwire-constructs validate vpc
    wetwire-constructs validate eks-rds --ignore W3005 --format json`,
		Args: stackArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				tmpl, _, err := a.synth(args[0])
				if err != nil {
					return err
				}
				res, err := validation.Template(tmpl, validation.Options{
					IgnoreRules: ignoreRules,
					SkipLint:    skipLint,
				})
				if err != nil {
					return err
				}
				return outputValidateResult(wetwire.ValidateResult{
					Success:   res.Passed,
					Resources: len(tmpl.Resources),
					Errors:    res.Errors,
					Warnings:  res.Warnings,
				}, outputFormat, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&skipLint, "skip-lint", false, "Run only the reference checks")
	cmd.Flags().StringSliceVar(&ignoreRules, "ignore", nil, "cfn-lint rule IDs to ignore")

	return cmd
}

func outputValidateResult(result wetwire.ValidateResult, format string, w io.Writer) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Success {
			fmt.Fprintf(w, "Validation passed: %d resources OK\n", result.Resources)
			for _, warnMsg := range result.Warnings {
				fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
			}
			return nil
		}

		fmt.Fprintln(w, "Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(w, "  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return errValidationFailed
	}
	return nil
}
