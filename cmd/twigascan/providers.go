package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func providersCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the provider registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := loadRegistry(loadSettings(v))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tKEY\tNAME\tTYPE")
			for _, rec := range registry.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.KeyKind, rec.Key, rec.Name, rec.Type)
			}
			return tw.Flush()
		},
	}
}
