package util

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DetectMIME sniffs up to 512 bytes of the file, falling back to the
// extension when sniffing yields the generic octet-stream type.
func DetectMIME(file *os.File, name string) (string, error) {
	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && n == 0 {
		return "", err
	}

	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	detected := http.DetectContentType(buffer[:n])
	if detected == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			return byExt, nil
		}
	}

	return detected, nil
}

func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

func IsVideoMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "video/")
}

func IsImageExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".png", ".jpg", ".jpeg", ".jpe", ".gif", ".webp", ".bmp", ".tiff", ".tif", ".svg", ".ico", ".avif", ".heic":
		return true
	default:
		return false
	}
}

func IsVideoExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".mp4", ".m4v", ".mov", ".webm", ".mkv", ".avi", ".mpeg", ".mpg", ".ogv", ".ts":
		return true
	default:
		return false
	}
}

// IsThumbnailMIME reports whether the decoder set wired into the thumbnail
// path can handle the type.
func IsThumbnailMIME(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	default:
		return false
	}
}
