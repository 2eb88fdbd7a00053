package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	furnilytics "github.com/Furnilytics/Furnilytics-lib"
)

type dataOptions struct {
	frm     string
	to      string
	limit   int
	csvPath string
}

func newDataCmd(root *rootOptions) *cobra.Command {
	opts := dataOptions{}
	cmd := &cobra.Command{
		Use:   "data <id>",
		Short: "Fetch observation rows for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runData(cmd, root, opts, args[0])
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.frm, "frm", "", "inclusive start date (YYYY-MM-DD)")
	fs.StringVar(&opts.to, "to", "", "inclusive end date (YYYY-MM-DD)")
	fs.IntVar(&opts.limit, "limit", 0, "maximum rows to return")
	fs.StringVar(&opts.csvPath, "csv", "", "write result to CSV file")

	return cmd
}

func runData(cmd *cobra.Command, root *rootOptions, opts dataOptions, datasetID string) error {
	client, err := newClient(root)
	if err != nil {
		return err
	}

	query := &furnilytics.DataQuery{
		From:  opts.frm,
		To:    opts.to,
		Limit: opts.limit,
	}
	table, err := client.Data(cmd.Context(), datasetID, query)
	if err != nil {
		return err
	}

	if opts.csvPath != "" {
		file, err := os.Create(opts.csvPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.csvPath, err)
		}
		if err := table.WriteCSV(file); err != nil {
			_ = file.Close()
			return fmt.Errorf("write %s: %w", opts.csvPath, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("close %s: %w", opts.csvPath, err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", table.Len(), opts.csvPath)
		return err
	}

	return renderTable(cmd.OutOrStdout(), table)
}
