package cli

import (
	"github.com/spf13/cobra"
)

func newMetaCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <id>",
		Short: "Show the metadata object for one dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(root)
			if err != nil {
				return err
			}
			meta, err := client.MetadataOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), meta)
		},
	}
}
