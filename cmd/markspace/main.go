package main

import (
	"context"
	"fmt"
	"io"
	"os"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-markspace/cmd/markspace/internal/bootstrap"
	spacecmd "github.com/goliatone/go-markspace/internal/commands/space"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "markspace:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	root := newRootCommand(out)
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := bootstrap.Options{Out: out}

	root := &cobra.Command{
		Use:   "markspace",
		Short: "Publish Markdown directories as Confluence spaces",
		Long: `markspace renders a directory of Markdown files into Confluence storage
format and publishes it as a space: one page per file, the directory
structure as the page hierarchy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "go-logger output format (json, console, pretty)")
	flags.StringVar(&opts.DB, "db", "", "space store DSN (sqlite file or postgres:// URL)")

	root.AddCommand(
		newPreviewCommand(&opts),
		newPlanCommand(&opts),
		newSyncCommand(&opts),
	)
	return root
}

func newPreviewCommand(opts *bootstrap.Options) *cobra.Command {
	var dir, output string
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render one Markdown file to storage format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd.Context(), *opts, spacecmd.RenderDocumentCommand{
				Path:   args[0],
				Dir:    dir,
				Output: output,
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "space directory the file belongs to")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the rendered page to this file")
	return cmd
}

func newPlanCommand(opts *bootstrap.Options) *cobra.Command {
	var archive bool
	cmd := &cobra.Command{
		Use:   "plan <dir>",
		Short: "Show what a sync would change without publishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd.Context(), *opts, spacecmd.PlanSpaceCommand{
				Dir:     args[0],
				Archive: archive,
			})
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "include archive and unarchive decisions")
	return cmd
}

func newSyncCommand(opts *bootstrap.Options) *cobra.Command {
	var dryRun, archive bool
	cmd := &cobra.Command{
		Use:   "sync <dir>",
		Short: "Publish a space directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd.Context(), *opts, spacecmd.SyncSpaceCommand{
				Dir:     args[0],
				DryRun:  dryRun,
				Archive: archive,
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without publishing")
	cmd.Flags().BoolVar(&archive, "archive", false, "archive managed pages whose file was removed")
	return cmd
}

// dispatch builds the module and sends msg through the command dispatcher.
func dispatch[T command.Message](ctx context.Context, opts bootstrap.Options, msg T) error {
	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer module.Close()
	return dispatcher.Dispatch(ctx, msg)
}
