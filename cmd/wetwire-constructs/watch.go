package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-aws-constructs-go/internal/config"
)

// newWatchCmd creates the "watch" subcommand for re-synthesizing on config changes.
func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		debounce     time.Duration
		outputFormat string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "watch <stacks...>",
		Short: "Re-synthesize stacks when the config changes",
		Long: `Watch monitors wetwire.yaml and writes the named stacks to --dir each
time it changes.

The watch command:
- Watches the directory of the config file, so editors that replace the file are seen
- Reloads and validates the config on each change
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    wetwire-constructs watch vpc ecs
    wetwire-constructs watch stitcher --debounce 1s -d out`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := stackArg(cmd, []string{name}); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, args, watchOptions{
				debounce:     debounce,
				outputFormat: outputFormat,
				outputDir:    outputDir,
			}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputDir, "dir", "d", "cdk.out", "Output directory")

	return cmd
}

type watchOptions struct {
	debounce     time.Duration
	outputFormat string
	outputDir    string
}

// runWatch synthesizes once, then again after every change to the config
// file, until ctx is done.
func runWatch(ctx context.Context, opts *rootOptions, names []string, wopts watchOptions, out io.Writer) error {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	fmt.Fprintf(out, "Watching: %s\n", path)

	rebuild := func() {
		err := withApp(ctx, opts, func(a *app) error {
			return synthMany(a, names, wopts.outputFormat, wopts.outputDir, false, out)
		})
		if err != nil {
			fmt.Fprintf(out, "Build error: %v\n", err)
		}
	}

	fmt.Fprintln(out, "Running initial synth...")
	rebuild()

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	fmt.Fprintln(out, "\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigChange(event, path) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(wopts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Fprintf(out, "\n[%s] Change detected, rebuilding...\n", time.Now().Format("15:04:05"))
			rebuild()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "Watch error: %v\n", err)

		case <-ctx.Done():
			fmt.Fprintln(out, "\nStopping watch...")
			return nil
		}
	}
}

// isConfigChange reports whether event writes or replaces the config file.
func isConfigChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
