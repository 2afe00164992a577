package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizeAPIPath converts a client-supplied path into the canonical
// slash-separated form rooted at "/".
func NormalizeAPIPath(p string) string {
	cleaned := filepath.ToSlash(filepath.Clean("/" + strings.TrimSpace(p)))
	if cleaned == "" || cleaned == "." {
		return "/"
	}
	return cleaned
}

// ToAPIPath maps an absolute on-disk path back to its API path relative to
// the share root.
func ToAPIPath(absPath string, rootAbs string) string {
	rel, err := filepath.Rel(rootAbs, absPath)
	if err != nil || rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}

func HumanizeSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}

	units := []string{"KB", "MB", "GB", "TB"}
	value := float64(size)
	for _, unit := range units {
		value = value / 1024
		if value < 1024 {
			return fmt.Sprintf("%.0f %s", value, unit)
		}
	}

	return fmt.Sprintf("%.0f PB", value/1024)
}
