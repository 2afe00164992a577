// Package upload implements resumable upload sessions. Each session is
// persisted on disk as a JSON metadata file next to its .part payload, so
// in-flight transfers survive server restarts. The session's Received offset
// is the single source of truth for resumption: every chunk write must start
// exactly at it, and the updated value is durably stored before it is
// reported back to the client.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"homeshare/internal/event"
	"homeshare/internal/model"
	"homeshare/internal/storage"
	"homeshare/pkg/apierror"
)

type session struct {
	UploadID   string `json:"upload_id"`
	TargetPath string `json:"target_path"`
	TotalSize  int64  `json:"total_size"`
	Received   int64  `json:"received"`
	Overwrite  bool   `json:"overwrite"`
	CreatedAt  int64  `json:"created_at"`
}

type Manager struct {
	store          *storage.Storage
	uploadDir      string
	allowOverwrite bool
	bus            event.Bus

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(stateDir string, store *storage.Storage, allowOverwrite bool, bus event.Bus) (*Manager, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, fmt.Errorf("state dir cannot be empty")
	}

	abs, err := filepath.Abs(stateDir)
	if err != nil {
		return nil, fmt.Errorf("resolve state dir: %w", err)
	}

	uploadDir := filepath.Join(abs, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload state dir: %w", err)
	}

	m := &Manager{
		store:          store,
		uploadDir:      uploadDir,
		allowOverwrite: allowOverwrite,
		bus:            bus,
		sessions:       make(map[string]*session),
	}

	if err := m.restore(); err != nil {
		return nil, err
	}

	return m, nil
}

// restore reloads persisted session metadata from a previous run.
func (m *Manager) restore() error {
	entries, err := os.ReadDir(m.uploadDir)
	if err != nil {
		return fmt.Errorf("read upload state dir: %w", err)
	}

	restored := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		raw, readErr := os.ReadFile(filepath.Join(m.uploadDir, entry.Name()))
		if readErr != nil {
			continue
		}

		var sess session
		if json.Unmarshal(raw, &sess) != nil || sess.UploadID == "" {
			continue
		}

		m.sessions[sess.UploadID] = &sess
		restored++
	}

	if restored > 0 {
		slog.Info("restored upload sessions from disk", "count", restored)
	}

	return nil
}

func (m *Manager) stateFile(id string) string {
	return filepath.Join(m.uploadDir, id+".json")
}

func (m *Manager) partFile(id string) string {
	return filepath.Join(m.uploadDir, id+".part")
}

// persist writes session metadata durably; the fsync matters because the
// reported offset must never run ahead of what survives a crash.
func (m *Manager) persist(sess *session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	f, err := os.OpenFile(m.stateFile(sess.UploadID), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open session state file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(raw); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}

	return f.Sync()
}

func (m *Manager) publicState(sess *session) model.SessionState {
	return model.SessionState{
		UploadID:   sess.UploadID,
		TargetPath: sess.TargetPath,
		TotalSize:  sess.TotalSize,
		Received:   sess.Received,
		Overwrite:  sess.Overwrite,
		CreatedAt:  sess.CreatedAt,
		Completed:  sess.Received >= sess.TotalSize && sess.TotalSize > 0,
	}
}

// Create starts a new session, or with resume=true returns the live session
// already tracking the same (path, size) identity.
func (m *Manager) Create(_ context.Context, req model.CreateSessionRequest) (model.SessionState, error) {
	targetPath := strings.TrimSpace(req.Path)
	if targetPath == "" {
		return model.SessionState{}, apierror.BadRequest("path is required", "")
	}

	if req.Size <= 0 {
		return model.SessionState{}, apierror.BadRequest("size must be positive", "")
	}

	if info, err := m.store.Stat(targetPath); err == nil && info.IsDir() {
		return model.SessionState{}, apierror.BadRequest("target path points to a directory", targetPath)
	} else if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			return model.SessionState{}, err
		}
	}

	overwrite := m.allowOverwrite
	if req.Overwrite != nil {
		overwrite = *req.Overwrite
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if req.Resume {
		for _, sess := range m.sessions {
			if sess.TargetPath == targetPath && sess.TotalSize == req.Size {
				return m.publicState(sess), nil
			}
		}
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	sess := &session{
		UploadID:   id,
		TargetPath: targetPath,
		TotalSize:  req.Size,
		Received:   0,
		Overwrite:  overwrite,
		CreatedAt:  time.Now().Unix(),
	}

	if err := m.persist(sess); err != nil {
		return model.SessionState{}, err
	}

	part, err := os.OpenFile(m.partFile(id), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		os.Remove(m.stateFile(id))
		return model.SessionState{}, fmt.Errorf("create part file: %w", err)
	}
	part.Close()

	m.sessions[id] = sess

	slog.Info("upload session created",
		"upload_id", id,
		"target_path", targetPath,
		"total_size", req.Size,
		"overwrite", overwrite,
	)

	return m.publicState(sess), nil
}

func (m *Manager) Status(_ context.Context, id string) (model.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return model.SessionState{}, apierror.NotFound("upload session not found", id)
	}

	return m.publicState(sess), nil
}

// Append writes the half-open interval [start, end) into the session's part
// file. The start offset must equal the session's current Received value;
// anything else is rejected so the client re-reconciles instead of the
// server silently reordering.
func (m *Manager) Append(_ context.Context, id string, start int64, end int64, total int64, chunk io.Reader) (model.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return model.SessionState{}, apierror.NotFound("upload session not found", id)
	}

	if total != sess.TotalSize {
		return model.SessionState{}, apierror.BadRequest(
			fmt.Sprintf("declared total %d does not match session total %d", total, sess.TotalSize),
			id,
		)
	}

	if start != sess.Received {
		return model.SessionState{}, apierror.Conflict(
			"OFFSET_MISMATCH",
			fmt.Sprintf("expected chunk start %d, got %d", sess.Received, start),
			id,
		)
	}

	if end < start {
		return model.SessionState{}, apierror.BadRequest("invalid range end", "")
	}

	if end > sess.TotalSize {
		return model.SessionState{}, apierror.BadRequest("chunk exceeds declared file size", "")
	}

	part, err := os.OpenFile(m.partFile(id), os.O_WRONLY, 0o644)
	if err != nil {
		return model.SessionState{}, fmt.Errorf("open part file: %w", err)
	}

	if _, err := part.Seek(start, io.SeekStart); err != nil {
		part.Close()
		return model.SessionState{}, fmt.Errorf("seek to chunk offset: %w", err)
	}

	written, err := io.Copy(part, io.LimitReader(chunk, end-start))
	if err != nil {
		part.Close()
		return model.SessionState{}, fmt.Errorf("write chunk data: %w", err)
	}
	if written != end-start {
		part.Close()
		return model.SessionState{}, apierror.BadRequest(
			"chunk body shorter than declared range",
			fmt.Sprintf("expected %d bytes, got %d", end-start, written),
		)
	}

	if err := part.Sync(); err != nil {
		part.Close()
		return model.SessionState{}, fmt.Errorf("sync chunk data: %w", err)
	}
	part.Close()

	sess.Received = end
	if err := m.persist(sess); err != nil {
		return model.SessionState{}, err
	}

	if sess.Received >= sess.TotalSize {
		if err := m.finalize(sess); err != nil {
			return model.SessionState{}, err
		}
	}

	return m.publicState(sess), nil
}

// finalize promotes the assembled part file to its target path. Caller holds
// the manager lock.
func (m *Manager) finalize(sess *session) error {
	if _, err := m.store.Stat(sess.TargetPath); err == nil && !sess.Overwrite {
		return apierror.Conflict("TARGET_EXISTS", "target file exists", sess.TargetPath)
	}

	if err := m.store.Promote(m.partFile(sess.UploadID), sess.TargetPath); err != nil {
		return err
	}

	os.Remove(m.stateFile(sess.UploadID))
	delete(m.sessions, sess.UploadID)

	if m.bus != nil {
		m.bus.Publish(event.Event{
			ID:        uuid.NewString(),
			Type:      event.TypeFileUploaded,
			Path:      sess.TargetPath,
			Payload:   map[string]any{"size": sess.TotalSize},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	slog.Info("upload completed",
		"upload_id", sess.UploadID,
		"target_path", sess.TargetPath,
		"size", sess.TotalSize,
	)

	return nil
}

// Cancel drops a session and its partial data. Cancelling an unknown session
// is not an error; the client may race a completed upload.
func (m *Manager) Cancel(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	os.Remove(m.stateFile(id))
	os.Remove(m.partFile(id))

	slog.Info("upload session cancelled", "upload_id", id)
}

// CleanupExpired removes sessions older than maxAge along with orphan .part
// files left behind by crashed runs.
func (m *Manager) CleanupExpired(maxAge time.Duration) {
	now := time.Now()

	m.mu.Lock()
	var expired []string
	for id, sess := range m.sessions {
		if now.Sub(time.Unix(sess.CreatedAt, 0)) > maxAge {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(m.sessions, id)
		os.Remove(m.stateFile(id))
		os.Remove(m.partFile(id))
	}
	m.mu.Unlock()

	if len(expired) > 0 {
		slog.Info("cleaned up expired upload sessions", "count", len(expired))
	}

	entries, err := os.ReadDir(m.uploadDir)
	if err != nil {
		slog.Warn("upload cleanup: failed to read state dir", "error", err)
		return
	}

	orphansRemoved := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".part") {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}

		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".part")
		m.mu.Lock()
		_, tracked := m.sessions[id]
		m.mu.Unlock()
		if tracked {
			continue
		}

		if os.Remove(filepath.Join(m.uploadDir, entry.Name())) == nil {
			orphansRemoved++
		}
	}

	if orphansRemoved > 0 {
		slog.Info("cleaned up orphan part files", "count", orphansRemoved)
	}
}

// StartCleanupTicker runs CleanupExpired on an interval until ctx is done.
func (m *Manager) StartCleanupTicker(ctx context.Context, maxAge time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	// Run once on startup to clear stale files from a previous run.
	m.CleanupExpired(maxAge)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpired(maxAge)
		}
	}
}
