package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"homeshare/pkg/client"
)

func newPreviewCmd(opts *options) *cobra.Command {
	var media bool

	cmd := &cobra.Command{
		Use:   "preview <remote-path>",
		Short: "Print a bounded text preview, or the streaming URL for media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			if media {
				source, err := api.MediaPreview(args[0])
				if err != nil {
					return err
				}
				cmd.Printf("%s %s (preload=%s)\n", source.Kind, source.URL, source.Preload)
				return nil
			}

			preview, err := api.PreviewText(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cmd.Print(preview.Text)
			if preview.Truncated {
				fmt.Fprintf(cmd.ErrOrStderr(), "\n[truncated at %d bytes]\n", client.PreviewLimit)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&media, "media", false, "treat the path as audio or video and print its streaming source")
	return cmd
}
