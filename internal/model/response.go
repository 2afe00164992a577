package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ServerInfo describes the share configuration exposed at /api/v1/info.
type ServerInfo struct {
	ShareRoot      string `json:"share_root"`
	ReadOnly       bool   `json:"read_only"`
	AllowOverwrite bool   `json:"allow_overwrite"`
	Version        string `json:"version"`
}
