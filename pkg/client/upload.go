package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
)

// Session mirrors the server's view of an in-flight upload. Received is the
// server-confirmed contiguous byte count and is the only transfer cursor the
// client trusts. CreatedAt is a unix timestamp.
type Session struct {
	ID         string `json:"upload_id"`
	TargetPath string `json:"target_path"`
	TotalSize  int64  `json:"total_size"`
	Received   int64  `json:"received"`
	Overwrite  bool  `json:"overwrite"`
	CreatedAt  int64 `json:"created_at"`
	Completed  bool  `json:"completed"`
}

// ProgressFunc observes upload progress after each confirmed chunk.
type ProgressFunc func(sent int64, total int64)

type createSessionRequest struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Resume bool   `json:"resume"`
}

// Resolve finds or creates the upload session for (targetPath, totalSize).
// A cached session id is verified against the server before reuse; any
// failure to confirm it, including a stale total size, evicts the cache
// entry and falls through to creating a fresh session. Creation failures
// are fatal.
func (c *Client) Resolve(ctx context.Context, targetPath string, totalSize int64) (*Session, error) {
	key := SessionKey(targetPath, totalSize)

	if c.cache != nil {
		cachedID, err := c.cache.Get(key)
		if err != nil {
			return nil, fmt.Errorf("read session cache: %w", err)
		}
		if cachedID != "" {
			sess, statusErr := c.SessionStatus(ctx, cachedID)
			if statusErr == nil && sess.TotalSize == totalSize {
				return sess, nil
			}
			if deleteErr := c.cache.Delete(key); deleteErr != nil {
				return nil, fmt.Errorf("evict session cache: %w", deleteErr)
			}
		}
	}

	var sess Session
	payload := createSessionRequest{Path: targetPath, Size: totalSize, Resume: true}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/uploads", payload, &sess); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(key, sess.ID); err != nil {
			return nil, fmt.Errorf("persist session cache: %w", err)
		}
	}

	return &sess, nil
}

// SessionStatus queries the server for the current state of an upload
// session.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	err := c.getJSON(ctx, "/api/v1/uploads/"+url.PathEscape(sessionID), nil, &sess)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// CancelSession discards an upload session and its staged bytes.
func (c *Client) CancelSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.endpoint("/api/v1/uploads/"+url.PathEscape(sessionID), nil), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	return decodeInto(resp, nil)
}

// Drive streams the remainder of the file through the session, one
// Content-Range chunk at a time. The cursor starts at the server's Received
// value, so a resumed transfer sends only the suffix the server has not
// acknowledged. After every chunk the cursor is set to the offset the server
// reports back; a chunk is never retried on its own, the caller restarts the
// whole Drive and resumption picks up from the confirmed offset.
func (c *Client) Drive(ctx context.Context, src io.ReaderAt, sess *Session, progress ProgressFunc) error {
	cursor := sess.Received
	if progress != nil {
		progress(cursor, sess.TotalSize)
	}

	for cursor < sess.TotalSize {
		length := c.chunkSize()
		if remaining := sess.TotalSize - cursor; remaining < length {
			length = remaining
		}

		state, err := c.writeChunk(ctx, sess.ID, src, cursor, length, sess.TotalSize)
		if err != nil {
			return err
		}

		if state.Received <= cursor {
			return fmt.Errorf("upload %s: server offset did not advance past %d", sess.ID, cursor)
		}
		cursor = state.Received
		sess.Received = state.Received
		sess.Completed = state.Completed

		if progress != nil {
			progress(cursor, sess.TotalSize)
		}
	}

	return nil
}

func (c *Client) writeChunk(ctx context.Context, sessionID string, src io.ReaderAt, start int64, length int64, total int64) (*Session, error) {
	body := io.NewSectionReader(src, start, length)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.endpoint("/api/v1/uploads/"+url.PathEscape(sessionID), nil), body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, start+length-1, total))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	var state Session
	if err := decodeInto(resp, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Upload transfers localPath to targetPath on the share, resuming an earlier
// interrupted attempt when the session cache still points at a live session
// for the same path and size. targetPath defaults to the local basename
// when empty. The cache entry is dropped once the server finalizes the file.
func (c *Client) Upload(ctx context.Context, localPath string, targetPath string, progress ProgressFunc) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("upload %s: is a directory", localPath)
	}

	if targetPath == "" {
		targetPath = path.Base(info.Name())
	}

	sess, err := c.Resolve(ctx, targetPath, info.Size())
	if err != nil {
		return err
	}

	if !sess.Completed {
		if err := c.Drive(ctx, file, sess, progress); err != nil {
			return err
		}
	}

	if c.cache != nil {
		if err := c.cache.Delete(SessionKey(targetPath, info.Size())); err != nil {
			return fmt.Errorf("clear session cache: %w", err)
		}
	}

	return nil
}
