package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"homeshare/internal/util"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "List a directory on the share",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}

			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			listing, err := api.List(cmd.Context(), path)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, item := range listing.Items {
				size := "-"
				if item.Type == "file" {
					size = util.HumanizeSize(item.Size)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					item.Type, size, item.ModifiedAt.Format("2006-01-02 15:04"), item.Name)
			}
			return tw.Flush()
		},
	}
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>",
		Short: "Show details for a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			entry, err := api.Stat(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cmd.Printf("path:     %s\n", entry.Path)
			cmd.Printf("type:     %s\n", entry.Type)
			if entry.Type == "file" {
				cmd.Printf("size:     %s (%d bytes)\n", util.HumanizeSize(entry.Size), entry.Size)
			}
			cmd.Printf("modified: %s\n", entry.ModifiedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newMkdirCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory on the share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			return api.Mkdir(cmd.Context(), args[0])
		},
	}
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file or directory on the share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			return api.Delete(cmd.Context(), args[0])
		},
	}
}

func newMoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move <source> <destination>",
		Short: "Move or rename a path on the share",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cleanup, err := opts.client()
			if err != nil {
				return err
			}
			defer cleanup()

			return api.Move(cmd.Context(), args[0], args[1])
		},
	}
}
