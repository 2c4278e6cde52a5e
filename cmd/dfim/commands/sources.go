package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dfim/dfim/pkg/config"
	"github.com/dfim/dfim/pkg/value"
)

func newSourcesCommand(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Evaluate the configuration and list its sources",
		Long: `Run the configuration entry module and print the sources and layers it
declared. The entry module is --config, else $DFIM_CONFIG, else dfim.lua in the
dfim config directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := config.EntryModule(a.configPath, a.dirs)
			if !ok {
				return errors.New("no configuration entry module found")
			}

			s, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ExecFile(cmd.Context(), entry); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				entries := s.Sources().Entries()
				list := make(value.Array, 0, len(entries))
				for _, e := range entries {
					list = append(list, value.Object{
						"name":   value.Str(e.Name),
						"kind":   value.Str(e.Source.Kind().String()),
						"source": value.Str(e.Source.Value()),
					})
				}
				data, err := value.EncodeJSON(list, true)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tSOURCE")
			for _, e := range s.Sources().Entries() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Source.Kind(), e.Source.Value())
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, l := range s.Layers() {
				fmt.Fprintf(out, "layer %s: %d sources\n", l.Name, len(l.Sources))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}
