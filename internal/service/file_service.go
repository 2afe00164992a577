package service

import (
	"crypto/sha256"
	"encoding/hex"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"homeshare/internal/storage"
	"homeshare/internal/util"
	"homeshare/pkg/apierror"
)

// FileService serves raw file bytes for range-capable download/preview and
// generates cached JPEG thumbnails for images.
type FileService struct {
	store         *storage.Storage
	thumbnailRoot string
}

func NewFileService(store *storage.Storage, thumbnailRoot string) *FileService {
	return &FileService{store: store, thumbnailRoot: thumbnailRoot}
}

func (s *FileService) GetFile(path string) (*os.File, os.FileInfo, string, error) {
	resolved, err := s.store.Resolve(path)
	if err != nil {
		return nil, nil, "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, "", apierror.NotFound("file not found", path)
		}
		return nil, nil, "", err
	}

	if info.IsDir() {
		return nil, nil, "", apierror.BadRequest("path points to a directory", path)
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, nil, "", err
	}

	mimeType, err := util.DetectMIME(file, info.Name())
	if err != nil {
		_ = file.Close()
		return nil, nil, "", err
	}

	return file, info, mimeType, nil
}

func (s *FileService) GetThumbnail(path string, size int) (*os.File, os.FileInfo, error) {
	if size <= 0 {
		size = 256
	}

	resolved, err := s.store.Resolve(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apierror.NotFound("file not found", path)
		}
		return nil, nil, err
	}

	if info.IsDir() {
		return nil, nil, apierror.BadRequest("path points to a directory", path)
	}

	if err := os.MkdirAll(s.thumbnailRoot, 0o755); err != nil {
		return nil, nil, err
	}

	// Serve the cached thumbnail while it is at least as fresh as the source.
	thumbPath := s.thumbnailPath(resolved, size)
	if thumbInfo, statErr := os.Stat(thumbPath); statErr == nil {
		if !thumbInfo.ModTime().Before(info.ModTime()) {
			if thumbFile, openErr := os.Open(thumbPath); openErr == nil {
				return thumbFile, thumbInfo, nil
			}
		}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, nil, err
	}

	mimeType, err := util.DetectMIME(file, info.Name())
	_ = file.Close()
	if err != nil {
		return nil, nil, err
	}

	if !util.IsThumbnailMIME(mimeType) {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "thumbnails are only generated for images", mimeType, http.StatusUnsupportedMediaType)
	}

	return s.generateThumbnail(resolved, thumbPath, size, info)
}

func (s *FileService) generateThumbnail(resolved string, thumbPath string, size int, info os.FileInfo) (*os.File, os.FileInfo, error) {
	file, err := os.Open(resolved)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "cannot decode image", err.Error(), http.StatusUnsupportedMediaType)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "invalid image dimensions", resolved, http.StatusUnsupportedMediaType)
	}

	maxDim := width
	if height > maxDim {
		maxDim = height
	}

	scale := float64(size) / float64(maxDim)
	if scale > 1 {
		scale = 1
	}

	targetWidth := int(math.Round(float64(width) * scale))
	targetHeight := int(math.Round(float64(height) * scale))
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	thumbWriter, err := os.OpenFile(thumbPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, err
	}

	encodeErr := jpeg.Encode(thumbWriter, dst, &jpeg.Options{Quality: 90})
	closeErr := thumbWriter.Close()
	if encodeErr != nil {
		return nil, nil, encodeErr
	}
	if closeErr != nil {
		return nil, nil, closeErr
	}

	_ = os.Chtimes(thumbPath, time.Now().UTC(), info.ModTime())

	thumbFile, err := os.Open(thumbPath)
	if err != nil {
		return nil, nil, err
	}

	thumbInfo, err := os.Stat(thumbPath)
	if err != nil {
		_ = thumbFile.Close()
		return nil, nil, err
	}

	return thumbFile, thumbInfo, nil
}

func (s *FileService) thumbnailPath(resolvedPath string, size int) string {
	hash := sha256.Sum256([]byte(resolvedPath + "|" + strconv.Itoa(size)))
	return filepath.Join(s.thumbnailRoot, hex.EncodeToString(hash[:])+".jpg")
}
