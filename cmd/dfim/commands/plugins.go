package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dfim/dfim/pkg/plugin"
	"github.com/dfim/dfim/pkg/telemetry"
)

func newPluginsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List installed plugins",
		Long: `List the plugins installed in the plugin directory together with the
details from their optional plugin.yaml manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := telemetry.FromContext(cmd.Context()).NewComponentLogger("plugin")
			root := plugin.NewRoot(a.settings.PluginDir)

			if !root.Exists() {
				fmt.Fprintf(cmd.OutOrStdout(), "no plugin directory at %s\n", root.Path)
				return nil
			}
			plugins, err := root.Installed()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tREQUIRES\tDESCRIPTION")
			for _, p := range plugins {
				m, err := p.Manifest()
				switch {
				case errors.Is(err, plugin.ErrNoManifest):
					fmt.Fprintf(w, "%s\t-\t-\t\n", p.Name)
					continue
				case err != nil:
					logger.WithField("plugin", p.Name).WithError(err).Warn("Ignoring invalid plugin manifest")
					fmt.Fprintf(w, "%s\t?\t?\t(invalid manifest)\n", p.Name)
					continue
				}

				version := m.Version
				if version == "" {
					version = "-"
				}
				requires := "-"
				if len(m.Requires) > 0 {
					requires = strings.Join(m.Requires, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, version, requires, m.Description)
			}
			return w.Flush()
		},
	}
}
