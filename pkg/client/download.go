package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// Download fetches a remote file into localPath, staging bytes in a .part
// file and renaming it into place once complete. When a stale .part file
// exists the request asks the server to continue from its length; a server
// that answers 200 instead restarts the file from scratch.
func (c *Client) Download(ctx context.Context, remotePath string, localPath string, progress ProgressFunc) error {
	partPath := localPath + ".part"

	var offset int64
	if info, err := os.Stat(partPath); err == nil && !info.IsDir() {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint("/api/v1/files/download", url.Values{"path": {remotePath}}), nil)
	if err != nil {
		return err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		offset = 0
	case http.StatusRequestedRangeNotSatisfiable:
		// The .part file already holds the whole file.
		resp.Body.Close()
		return os.Rename(partPath, localPath)
	default:
		return decodeInto(resp, nil)
	}
	defer resp.Body.Close()

	part, err := os.OpenFile(partPath, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer part.Close()

	if err := part.Truncate(offset); err != nil {
		return err
	}
	if _, err := part.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	total := offset
	if resp.ContentLength >= 0 {
		total = offset + resp.ContentLength
	}
	if progress != nil {
		progress(offset, total)
	}

	written := offset
	buf := make([]byte, 128*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := part.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("download %s: %w", remotePath, readErr)
		}
	}

	if err := part.Sync(); err != nil {
		return err
	}

	return os.Rename(partPath, localPath)
}
