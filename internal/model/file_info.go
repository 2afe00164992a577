package model

import "time"

type FileItem struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	SizeHuman  string    `json:"size_human,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
	Extension  string    `json:"extension,omitempty"`
	IsImage    bool      `json:"is_image,omitempty"`
	IsVideo    bool      `json:"is_video,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
	ItemCount  *int      `json:"item_count,omitempty"`
}

type DirectoryListData struct {
	CurrentPath string     `json:"current_path"`
	ParentPath  string     `json:"parent_path"`
	Items       []FileItem `json:"items"`
}
