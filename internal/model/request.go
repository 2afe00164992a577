package model

type CreateDirectoryRequest struct {
	Path string `json:"path"`
}

type MoveRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type MoveResponse struct {
	Moved string `json:"moved"`
	To    string `json:"to"`
}

type DeleteResponse struct {
	Deleted string `json:"deleted"`
}

type ArchiveRequest struct {
	Paths []string `json:"paths"`
}

// CreateSessionRequest starts (or resumes) an upload session.
type CreateSessionRequest struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Resume    bool   `json:"resume"`
	Overwrite *bool  `json:"overwrite,omitempty"`
}

// SessionState is the public view of an upload session. Received is the
// server-authoritative count of contiguous bytes durably accepted.
type SessionState struct {
	UploadID   string `json:"upload_id"`
	TargetPath string `json:"target_path"`
	TotalSize  int64  `json:"total_size"`
	Received   int64  `json:"received"`
	Overwrite  bool   `json:"overwrite"`
	CreatedAt  int64  `json:"created_at"`
	Completed  bool   `json:"completed"`
}
