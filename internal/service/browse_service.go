package service

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"homeshare/internal/event"
	"homeshare/internal/model"
	"homeshare/internal/storage"
	"homeshare/internal/util"
	"homeshare/pkg/apierror"
)

// BrowseService covers directory enumeration and the simple file-management
// operations (mkdir, delete, move).
type BrowseService struct {
	store *storage.Storage
	bus   event.Bus
}

func NewBrowseService(store *storage.Storage, bus event.Bus) *BrowseService {
	return &BrowseService{store: store, bus: bus}
}

func (s *BrowseService) List(_ context.Context, requestedPath string) (model.DirectoryListData, error) {
	resolved, err := s.store.Resolve(requestedPath)
	if err != nil {
		return model.DirectoryListData{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DirectoryListData{}, apierror.NotFound("directory not found", requestedPath)
		}
		return model.DirectoryListData{}, err
	}
	if !info.IsDir() {
		return model.DirectoryListData{}, apierror.BadRequest("path is not a directory", requestedPath)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return model.DirectoryListData{}, err
	}

	items := make([]model.FileItem, 0, len(entries))
	for _, entry := range entries {
		// Dotfiles stay out of the listing, matching the share's browse view.
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		entryInfo, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}

		item := model.FileItem{
			Name:       entry.Name(),
			Path:       util.ToAPIPath(filepath.Join(resolved, entry.Name()), s.store.RootAbs()),
			ModifiedAt: entryInfo.ModTime().UTC(),
		}

		if entry.IsDir() {
			item.Type = "directory"
			if children, childrenErr := os.ReadDir(filepath.Join(resolved, entry.Name())); childrenErr == nil {
				count := len(children)
				item.ItemCount = &count
			}
		} else {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			item.Type = "file"
			item.Size = entryInfo.Size()
			item.SizeHuman = util.HumanizeSize(entryInfo.Size())
			item.Extension = ext
			item.IsImage = util.IsImageExtension(ext)
			item.IsVideo = util.IsVideoExtension(ext)
		}

		items = append(items, item)
	}

	// Directories first, then case-folded name order.
	sort.SliceStable(items, func(i int, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type == "directory"
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})

	currentPath := util.NormalizeAPIPath(requestedPath)
	parentPath := "/"
	if currentPath != "/" {
		parentPath = path.Dir(currentPath)
	}

	return model.DirectoryListData{
		CurrentPath: currentPath,
		ParentPath:  parentPath,
		Items:       items,
	}, nil
}

func (s *BrowseService) Info(_ context.Context, requestedPath string) (model.FileItem, error) {
	info, err := s.store.Stat(requestedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.FileItem{}, apierror.NotFound("path not found", requestedPath)
		}
		return model.FileItem{}, err
	}

	apiPath := util.NormalizeAPIPath(requestedPath)
	item := model.FileItem{
		Name:       info.Name(),
		Path:       apiPath,
		ModifiedAt: info.ModTime().UTC(),
	}

	if info.IsDir() {
		item.Type = "directory"
		item.Name = filepath.Base(apiPath)
	} else {
		ext := strings.ToLower(filepath.Ext(info.Name()))
		item.Type = "file"
		item.Size = info.Size()
		item.SizeHuman = util.HumanizeSize(info.Size())
		item.Extension = ext
		item.IsImage = util.IsImageExtension(ext)
		item.IsVideo = util.IsVideoExtension(ext)
	}

	return item, nil
}

func (s *BrowseService) CreateDirectory(_ context.Context, requestedPath string) (string, error) {
	apiPath := util.NormalizeAPIPath(requestedPath)
	if apiPath == "/" {
		return "", apierror.BadRequest("path is required", "")
	}

	if _, err := util.SanitizeFilename(filepath.Base(apiPath), false); err != nil {
		return "", err
	}

	if err := s.store.MkdirAll(apiPath, 0o755); err != nil {
		return "", err
	}

	s.publish(event.TypeDirCreated, apiPath, nil)
	return apiPath, nil
}

func (s *BrowseService) Delete(_ context.Context, requestedPath string) error {
	apiPath := util.NormalizeAPIPath(requestedPath)
	if apiPath == "/" {
		return apierror.Forbidden("cannot delete the share root", "")
	}

	if _, err := s.store.Stat(apiPath); err != nil {
		if os.IsNotExist(err) {
			return apierror.NotFound("target not found", apiPath)
		}
		return err
	}

	if err := s.store.RemoveAll(apiPath); err != nil {
		return err
	}

	s.publish(event.TypeFileDeleted, apiPath, nil)
	return nil
}

func (s *BrowseService) Move(_ context.Context, source string, destination string) error {
	sourcePath := util.NormalizeAPIPath(source)
	destPath := util.NormalizeAPIPath(destination)
	if sourcePath == "/" || destPath == "/" {
		return apierror.BadRequest("source and destination are required", "")
	}

	if _, err := s.store.Stat(sourcePath); err != nil {
		if os.IsNotExist(err) {
			return apierror.NotFound("source not found", sourcePath)
		}
		return err
	}

	if err := s.store.Rename(sourcePath, destPath); err != nil {
		return err
	}

	s.publish(event.TypeFileMoved, destPath, map[string]any{"from": sourcePath})
	return nil
}

func (s *BrowseService) publish(t event.Type, path string, payload any) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      t,
		Path:      path,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

