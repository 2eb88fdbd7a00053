package cli

import (
	"github.com/spf13/cobra"
)

func newDatasetsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the dataset catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(root)
			if err != nil {
				return err
			}
			table, err := client.Datasets(cmd.Context())
			if err != nil {
				return err
			}
			return renderTable(cmd.OutOrStdout(), table)
		},
	}
}

func newMetadataCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "List metadata for all datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(root)
			if err != nil {
				return err
			}
			table, err := client.Metadata(cmd.Context())
			if err != nil {
				return err
			}
			return renderTable(cmd.OutOrStdout(), table)
		},
	}
}
