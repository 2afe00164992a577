package event

type Type string

const (
	TypeFileUploaded Type = "file.uploaded"
	TypeFileDeleted  Type = "file.deleted"
	TypeFileMoved    Type = "file.moved"
	TypeDirCreated   Type = "dir.created"
)

// Event is broadcast to browsing clients so they can refresh the directory
// view after a change lands.
type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Path      string `json:"path"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
