// Package cli wires the hsctl commands on top of pkg/client.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"homeshare/pkg/client"
)

type options struct {
	serverURL string
	chunkSize int64
	cachePath string
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".homeshare", "sessions.db")
}

func defaultServerURL() string {
	if url := os.Getenv("HOMESHARE_URL"); url != "" {
		return url
	}
	return "http://localhost:8000"
}

// client builds the API client from the persistent flags. The returned
// cleanup closes the session cache and must always be called.
func (o *options) client() (*client.Client, func(), error) {
	var cache client.SessionCache
	cleanup := func() {}

	if o.cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(o.cachePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create cache directory: %w", err)
		}
		bolt, err := client.OpenBoltCache(o.cachePath)
		if err != nil {
			return nil, nil, err
		}
		cache = bolt
		cleanup = func() { bolt.Close() }
	}

	c := client.New(o.serverURL, cache)
	c.ChunkSize = o.chunkSize
	return c, cleanup, nil
}

func New() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "hsctl",
		Short:         "HomeShare command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.serverURL, "url", defaultServerURL(), "HomeShare server base URL")
	flags.Int64Var(&opts.chunkSize, "chunk-size", client.DefaultChunkSize, "upload chunk size in bytes")
	flags.StringVar(&opts.cachePath, "cache", defaultCachePath(), "session cache file, empty disables resume across runs")

	cmd.AddCommand(
		newListCmd(opts),
		newInfoCmd(opts),
		newMkdirCmd(opts),
		newRemoveCmd(opts),
		newMoveCmd(opts),
		newUploadCmd(opts),
		newDownloadCmd(opts),
		newPreviewCmd(opts),
		newZipCmd(opts),
		newVersionCmd(),
	)

	return cmd
}
