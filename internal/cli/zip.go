package cli

import (
	"os"

	"github.com/spf13/cobra"

	"homeshare/pkg/client"
)

func newZipCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "zip <path>...",
		Short: "Download the selected paths as a single zip archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			sel := client.NewSelection(args...)

			local := output
			if local == "" {
				local = client.BundleName(sel.Paths())
			}

			out, err := os.Create(local)
			if err != nil {
				return err
			}
			defer out.Close()

			if _, err := api.Bundle(cmd.Context(), sel, out); err != nil {
				os.Remove(local)
				return err
			}

			cmd.Printf("saved %s\n", local)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive filename, defaults to the derived name")
	return cmd
}
