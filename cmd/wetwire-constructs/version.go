package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/custom"
	"github.com/lex00/wetwire-aws-constructs-go/handlers"
)

// version can be set via ldflags: -ldflags "-X main.version=v1.0.0"
var version = ""

// getVersion prefers the ldflags version, then the module version recorded
// by "go install @version", then "dev".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

// versionInfo is what the version command reports. The handler fields
// describe the custom-resource-handler bundle built from the same module,
// which the synthesized templates expect in HandlerCodeBucket/Key.
type versionInfo struct {
	Version        string   `json:"version"`
	Commit         string   `json:"commit,omitempty"`
	Go             string   `json:"go"`
	HandlerRuntime string   `json:"handlerRuntime"`
	HandlerTypes   []string `json:"handlerTypes"`
}

func getVersionInfo() versionInfo {
	info := versionInfo{
		Version:        getVersion(),
		Go:             runtime.Version(),
		HandlerRuntime: custom.HandlerRuntime,
		HandlerTypes:   handlers.New(nil, nil).Types(),
	}
	sort.Strings(info.HandlerTypes)
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Commit = s.Value
			}
		}
	}
	return info
}

func newVersionCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputVersion(getVersionInfo(), outputFormat, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func outputVersion(info versionInfo, format string, w io.Writer) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case "text":
		fmt.Fprintf(w, "wetwire-constructs %s\n", info.Version)
		if info.Commit != "" {
			fmt.Fprintf(w, "  commit:  %s\n", info.Commit)
		}
		fmt.Fprintf(w, "  go:      %s\n", info.Go)
		fmt.Fprintf(w, "  handler: %s (%s)\n", info.HandlerRuntime, strings.Join(info.HandlerTypes, ", "))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
