package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"homeshare/internal/util"
	"homeshare/pkg/client"
)

func progressPrinter(out io.Writer) client.ProgressFunc {
	return func(sent int64, total int64) {
		if total <= 0 {
			fmt.Fprintf(out, "\r%s transferred", util.HumanizeSize(sent))
			return
		}
		fmt.Fprintf(out, "\r%s / %s (%d%%)",
			util.HumanizeSize(sent), util.HumanizeSize(total), sent*100/total)
	}
}

func newUploadCmd(opts *options) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "upload <local-file>...",
		Short: "Upload files, resuming interrupted transfers if possible",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target != "" && len(args) > 1 {
				return fmt.Errorf("--target only applies to a single file")
			}

			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			// One file at a time; each transfer finishes or fails before
			// the next session is opened.
			progress := progressPrinter(cmd.ErrOrStderr())
			for _, local := range args {
				if err := api.Upload(cmd.Context(), local, target, progress); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr())
					return fmt.Errorf("upload %s: %w", local, err)
				}
				fmt.Fprintln(cmd.ErrOrStderr())
				cmd.Printf("uploaded %s\n", local)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "destination path on the share, defaults to the local basename")
	return cmd
}

func newDownloadCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <remote-path>",
		Short: "Download a file, continuing a partial download if one exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			local := output
			if local == "" {
				local = filepath.Base(args[0])
			}

			progress := progressPrinter(cmd.ErrOrStderr())
			if err := api.Download(cmd.Context(), args[0], local, progress); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr())
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr())
			cmd.Printf("saved %s\n", local)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "local destination, defaults to the remote basename")
	return cmd
}
