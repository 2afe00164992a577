package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"homeshare/pkg/apierror"
)

// BundleName derives the local filename for an archive of the given paths:
// a single selected path keeps its basename as the stem, anything else
// falls back to the generic stem.
func BundleName(paths []string) string {
	if len(paths) == 1 {
		if base := path.Base(paths[0]); base != "" && base != "." && base != "/" {
			return base + ".zip"
		}
	}
	return "homeshare.zip"
}

// Bundle streams a zip archive of the selection into w and returns the
// filename the archive should be saved under, preferring the server's
// Content-Disposition over the locally derived name.
func (c *Client) Bundle(ctx context.Context, sel *Selection, w io.Writer) (string, error) {
	paths := sel.Paths()
	if len(paths) == 0 {
		return "", apierror.New("EMPTY_SELECTION", "no paths selected", "", http.StatusBadRequest)
	}

	payload, err := json.Marshal(map[string][]string{"paths": paths})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/v1/archive", nil), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", decodeInto(resp, nil)
	}
	defer resp.Body.Close()

	name := BundleName(paths)
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, parseErr := mime.ParseMediaType(disposition); parseErr == nil {
			if served := params["filename"]; served != "" {
				name = served
			}
		}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("stream archive: %w", err)
	}

	return name, nil
}
