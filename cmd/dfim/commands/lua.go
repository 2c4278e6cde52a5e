package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfim/dfim/pkg/history"
	"github.com/dfim/dfim/pkg/repl"
	"github.com/dfim/dfim/pkg/telemetry"
	"github.com/dfim/dfim/pkg/watch"
)

func newLuaCommand(a *app) *cobra.Command {
	var (
		file      string
		watchFile bool
	)

	cmd := &cobra.Command{
		Use:   "lua [block]",
		Short: "Execute lua by block, by file, or in a basic REPL",
		Long: `Execute Lua code inside a dfim session.

With a block argument the block is run, with --file the file is run, and with
neither an interactive prompt is started. The prompt keeps its history in the
dfim data directory.`,
		Example: `  # Run a block
  dfim lua 'print(dfim.os_name)'

  # Run a file, re-running it whenever it changes
  dfim lua -f ./scratch.lua --watch

  # Start the interactive prompt
  dfim lua`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch {
			case len(args) == 1 && file != "":
				return errors.New("a block and --file cannot be used together")
			case watchFile && file == "":
				return errors.New("--watch requires --file")
			case len(args) == 1:
				return a.runBlock(cmd, args[0])
			case watchFile:
				logger := telemetry.FromContext(ctx).Zerolog()
				return watch.New(logger).Run(ctx, file, func(ctx context.Context) error {
					return a.runFile(ctx, cmd, file)
				})
			case file != "":
				return a.runFile(ctx, cmd, file)
			default:
				return a.runREPL(cmd)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "execute a lua file")
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "re-run --file whenever it changes")

	return cmd
}

func (a *app) runBlock(cmd *cobra.Command, block string) error {
	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.ExecString(cmd.Context(), block, "cli")
}

// runFile runs path in a fresh session.
func (a *app) runFile(ctx context.Context, cmd *cobra.Command, path string) error {
	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.ExecFile(ctx, path)
}

func (a *app) runREPL(cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger := telemetry.FromContext(ctx)

	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var store repl.HistoryStore
	hist, err := history.Open(ctx, a.settings.HistoryConfig())
	if err != nil {
		logger.WithError(err).Warn("History is unavailable for this session")
	} else {
		defer hist.Close()
		store = hist
	}

	editor := repl.NewLineEditor(ctx, store, logger.Zerolog())
	defer editor.Close()

	ev := repl.NewEvaluator(s, editor, repl.Config{
		Banner: repl.Banner(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Logger: logger.Zerolog(),
	})
	if err := ev.Run(ctx); err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	return nil
}
