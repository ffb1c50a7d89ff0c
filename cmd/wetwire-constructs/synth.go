package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/internal/template"
	"github.com/lex00/wetwire-aws-constructs-go/stacks"
)

func newSynthCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat string
		outputFile   string
		outputDir    string
		all          bool
	)

	cmd := &cobra.Command{
		Use:   "synth [stacks...]",
		Short: "Generate CloudFormation templates",
		Long: `Synth builds the named stacks from wetwire.yaml and prints their templates.

With one stack the template goes to stdout or --output. With several stacks,
or --all, each template is written to <dir>/<stack>.<format>.

Examples:
    wetwire-constructs synth vpc
    wetwire-constructs synth ecs --format yaml -o ecs.yaml
    wetwire-constructs synth --all -d cdk.out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all takes no stack names")
			}
			if !all && len(args) == 0 {
				return errors.New("name a stack or pass --all (see 'wetwire-constructs stacks')")
			}
			if len(args) > 1 && outputFile != "" {
				return errors.New("--output takes a single stack; use --dir")
			}
			return withApp(cmd.Context(), opts, func(a *app) error {
				if all {
					return synthMany(a, a.registry.Names(), outputFormat, outputDir, true, cmd.OutOrStdout())
				}
				if len(args) == 1 {
					return synthOne(a, args[0], outputFormat, outputFile, cmd.OutOrStdout())
				}
				return synthMany(a, args, outputFormat, outputDir, false, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&outputDir, "dir", "d", "cdk.out", "Output directory for several stacks")
	cmd.Flags().BoolVar(&all, "all", false, "Synthesize every stack, skipping those that need disabled lookups")

	return cmd
}

func synthOne(a *app, name, format, outputFile string, stdout io.Writer) error {
	tmpl, _, err := a.synth(name)
	if err != nil {
		return err
	}
	data, err := render(tmpl, format)
	if err != nil {
		return err
	}
	if outputFile == "" {
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	return os.WriteFile(outputFile, data, 0o644)
}

// synthMany writes each stack to dir. With skipUnresolved, stacks that
// need lookups which are not enabled are skipped instead of failing.
func synthMany(a *app, names []string, format, dir string, skipUnresolved bool, stdout io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var failed []error
	for _, name := range names {
		result, err := synthResult(a, name)
		if skipUnresolved && errors.Is(err, stacks.ErrLookupDisabled) {
			a.logger.Info("skipping stack without lookups", zap.String("stack", name))
			fmt.Fprintf(stdout, "%s: skipped, needs lookups\n", name)
			continue
		}
		if err != nil {
			a.logger.Error("synth failed", zap.String("stack", name), zap.Error(err))
			failed = append(failed, fmt.Errorf("%s: %w", name, err))
			continue
		}
		data, err := render(&result.Template, format)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name+"."+format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d resources -> %s\n", name, len(result.Resources), path)
	}
	if len(failed) > 0 {
		return fmt.Errorf("synth failed: %w", errors.Join(failed...))
	}
	return nil
}

func synthResult(a *app, name string) (wetwire.SynthResult, error) {
	tmpl, nodes, err := a.synth(name)
	if err != nil {
		return wetwire.SynthResult{Stack: name, Errors: []string{err.Error()}}, err
	}
	result := wetwire.SynthResult{Success: true, Stack: name, Template: *tmpl}
	for _, n := range nodes {
		result.Resources = append(result.Resources, n.LogicalID)
	}
	return result, nil
}

func render(tmpl *wetwire.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(tmpl)
	case "yaml":
		return template.ToYAML(tmpl)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// stackArg validates a single stack name argument.
func stackArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if _, ok := stacks.Default()[args[0]]; !ok {
		return fmt.Errorf("%w: %q (available: %v)", stacks.ErrUnknownStack, args[0], stacks.Default().Names())
	}
	return nil
}
