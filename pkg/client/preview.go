package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"homeshare/pkg/apierror"
)

// PreviewLimit caps how many bytes a text preview fetches.
const PreviewLimit int64 = 200 * 1024

// Preview is a bounded prefix of a remote text file. TotalSize is -1 when
// the server did not disclose the full length.
type Preview struct {
	Text      string
	Truncated bool
	TotalSize int64
}

var contentRangePattern = regexp.MustCompile(`^bytes (\d+)-(\d+)/(\d+|\*)$`)

// PreviewText fetches at most PreviewLimit bytes of a text file using a
// byte-range request. Truncation is decided from the Content-Range total
// when the server discloses one; otherwise, for servers that ignore Range
// or answer with a wildcard total, a prefix within one byte of the limit is
// presumed truncated. That heuristic misjudges files of exactly
// PreviewLimit-1 or PreviewLimit bytes, which only costs a spurious
// "truncated" marker.
func (c *Client) PreviewText(ctx context.Context, remotePath string) (Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint("/api/v1/files/preview", url.Values{"path": {remotePath}}), nil)
	if err != nil {
		return Preview{}, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", PreviewLimit-1))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Preview{}, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return Preview{}, decodeInto(resp, nil)
	}
	defer resp.Body.Close()

	// Never slurp past the limit even if the server ignored the Range
	// header: one extra byte is enough to prove there was more.
	data, err := io.ReadAll(io.LimitReader(resp.Body, PreviewLimit+1))
	if err != nil {
		return Preview{}, fmt.Errorf("read preview body: %w", err)
	}
	overread := int64(len(data)) > PreviewLimit
	if overread {
		data = data[:PreviewLimit]
	}

	preview := Preview{Text: string(data), TotalSize: -1}

	if resp.StatusCode == http.StatusPartialContent {
		if end, total, ok := parseContentRange(resp.Header.Get("Content-Range")); ok && total >= 0 {
			preview.TotalSize = total
			preview.Truncated = end+1 < total
			return preview, nil
		}
	}

	preview.Truncated = overread || int64(len(data)) >= PreviewLimit-1
	return preview, nil
}

// parseContentRange extracts the last byte position and the total length
// from a Content-Range response header. A wildcard total is reported as -1.
func parseContentRange(header string) (end int64, total int64, ok bool) {
	match := contentRangePattern.FindStringSubmatch(strings.TrimSpace(header))
	if match == nil {
		return 0, 0, false
	}

	end, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return 0, 0, false
	}

	total = -1
	if match[3] != "*" {
		total, err = strconv.ParseInt(match[3], 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}

	return end, total, true
}

// MediaSource describes how a media file should be handed to a player:
// stream it from the preview URL with metadata-only preloading rather than
// downloading it up front.
type MediaSource struct {
	URL     string
	Kind    string
	Preload string
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true, ".ogg": true,
	".m4a": true, ".aac": true, ".opus": true, ".wma": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".webm": true, ".avi": true,
	".mov": true, ".wmv": true, ".flv": true, ".m4v": true,
}

// MediaPreview builds the streaming source for an audio or video file.
func (c *Client) MediaPreview(remotePath string) (MediaSource, error) {
	ext := strings.ToLower(path.Ext(remotePath))

	var kind string
	switch {
	case videoExtensions[ext]:
		kind = "video"
	case audioExtensions[ext]:
		kind = "audio"
	default:
		return MediaSource{}, apierror.New("UNSUPPORTED_TYPE",
			fmt.Sprintf("no media preview for %q files", ext), "", http.StatusBadRequest)
	}

	return MediaSource{
		URL:     c.endpoint("/api/v1/files/preview", url.Values{"path": {remotePath}}),
		Kind:    kind,
		Preload: "metadata",
	}, nil
}
