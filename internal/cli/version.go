package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	furnilytics "github.com/Furnilytics/Furnilytics-lib"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), furnilytics.GetVersion())
			return err
		},
	}
}
