package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-trademark-similarity/model"
)

func newWeightsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "weights",
		Short: "Print and validate the active weight table",
		Long: `Print the weight applied to each signal after loading the config file, then
validate the table. Exits non-zero when the table is not usable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loadErr := root.loadConfig()
			if cfg == nil {
				return loadErr
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SIGNAL\tWEIGHT")
			for _, name := range model.SignalOrder {
				fmt.Fprintf(tw, "%s\t%g\n", name, cfg.Weights.Get(name))
			}
			fmt.Fprintf(tw, "sum\t%.12g\n", cfg.Weights.Sum())
			if err := tw.Flush(); err != nil {
				return err
			}

			if err := cfg.Weights.Validate(); err != nil {
				return err
			}
			if loadErr != nil {
				return loadErr
			}
			fmt.Fprintln(out, "weight table OK")
			return nil
		},
	}
}
