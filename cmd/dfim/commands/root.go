package commands

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dfim/dfim/pkg/config"
	"github.com/dfim/dfim/pkg/script"
	"github.com/dfim/dfim/pkg/telemetry"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// String renders the version line, with build details when verbose.
func (b BuildInfo) String(verbose bool) string {
	var lines []string
	if b.Commit != "" && b.Commit != "unknown" {
		lines = append(lines, fmt.Sprintf("dfim %s (%s %s)", b.Version, shortCommit(b.Commit), b.BuildDate))
	} else {
		lines = append(lines, "dfim "+b.Version)
	}
	if verbose {
		if b.Commit != "" && b.Commit != "unknown" {
			lines = append(lines, "commit-hash: "+b.Commit, "commit-date: "+b.BuildDate)
		}
		lines = append(lines,
			"build-target: "+script.TargetTriple(),
			"go-version: "+runtime.Version())
	}
	return strings.Join(lines, "\n")
}

func shortCommit(c string) string {
	if len(c) > 9 {
		return c[:9]
	}
	return c
}

// app carries state shared by all subcommands.
type app struct {
	info BuildInfo

	// Global flags
	configPath  string
	quiet       bool
	verbose     int
	showVersion bool

	dirs     config.Dirs
	settings *config.Settings
	logger   *telemetry.Logger
}

// Execute runs the root command
func Execute(ctx context.Context, info BuildInfo) error {
	return newRootCommand(info).ExecuteContext(ctx)
}

func newRootCommand(info BuildInfo) *cobra.Command {
	a := &app{info: info}

	rootCmd := &cobra.Command{
		Use:   "dfim",
		Short: "dfim - a dotfile manager configured in Lua",
		Long: `dfim manages dotfiles from sources declared in a Lua configuration.

The configuration entry module, plugins and ad-hoc commands all run in an
embedded Lua interpreter exposing the dfim API.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return a.logger.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), a.info.String(a.verbose > 0))
				return nil
			}
			return cmd.Help()
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "override the configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output")
	rootCmd.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "use verbose output (specify multiple for more)")
	rootCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")
	rootCmd.Flags().BoolVarP(&a.showVersion, "version", "V", false, "show version information")

	rootCmd.AddCommand(newLuaCommand(a))
	rootCmd.AddCommand(newSourcesCommand(a))
	rootCmd.AddCommand(newPluginsCommand(a))
	rootCmd.AddCommand(newVersionCommand(a))

	return rootCmd
}

// setup resolves directories, loads settings and configures logging.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	dirs, err := config.DefaultDirs()
	if err != nil {
		return err
	}
	settings, err := config.Load(config.LoadOptions{Dirs: dirs})
	if err != nil {
		return err
	}
	if a.quiet || a.verbose > 0 {
		settings.Logging.Level = telemetry.LevelFromVerbosity(a.quiet, a.verbose)
	}

	logger, err := telemetry.NewLogger(settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	a.dirs = dirs
	a.settings = settings
	a.logger = logger
	cmd.SetContext(logger.WithContext(cmd.Context()))

	logger.NewComponentLogger("cli").
		WithField("config_dir", dirs.Config).
		WithField("plugin_dir", settings.PluginDir).
		Debug("Settings loaded")
	return nil
}

// newSession creates a Lua session wired to the command's output.
func (a *app) newSession(cmd *cobra.Command) (*script.Session, error) {
	return script.NewSession(script.Options{
		Version:   a.info.Version,
		PluginDir: a.settings.PluginDir,
		Logger:    telemetry.FromContext(cmd.Context()).Zerolog(),
		Stdout:    cmd.OutOrStdout(),
	})
}
