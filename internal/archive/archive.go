// Package archive streams a zip of an arbitrary selection of share paths.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"homeshare/internal/storage"
	"homeshare/pkg/apierror"
)

// WriteZip writes one archive containing every selected path. Files are
// stored under their selection-relative names; directories are walked
// recursively and empty directories get explicit entries.
func WriteZip(store *storage.Storage, paths []string, w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, clientPath := range paths {
		resolved, err := store.Resolve(clientPath)
		if err != nil {
			return err
		}

		info, err := os.Stat(resolved)
		if err != nil {
			if os.IsNotExist(err) {
				return apierror.NotFound("path not found", clientPath)
			}
			return err
		}

		arcBase := strings.Trim(path.Clean("/"+filepath.ToSlash(clientPath)), "/")
		if arcBase == "" {
			arcBase = "share"
		}

		if info.IsDir() {
			if err := addDirectory(zw, resolved, arcBase); err != nil {
				return err
			}
			continue
		}

		if err := addFile(zw, resolved, arcBase); err != nil {
			return err
		}
	}

	return zw.Close()
}

func addDirectory(zw *zip.Writer, dirAbs string, arcBase string) error {
	if _, err := zw.Create(arcBase + "/"); err != nil {
		return err
	}

	return filepath.WalkDir(dirAbs, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if p == dirAbs {
			return nil
		}

		// Symlinks are skipped; following them could escape the share root.
		if entry.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(dirAbs, p)
		if err != nil {
			return err
		}

		arcName := arcBase + "/" + filepath.ToSlash(rel)
		if entry.IsDir() {
			_, err := zw.Create(arcName + "/")
			return err
		}

		return copyIntoZip(zw, p, arcName)
	})
}

func addFile(zw *zip.Writer, fileAbs string, arcName string) error {
	return copyIntoZip(zw, fileAbs, arcName)
}

func copyIntoZip(zw *zip.Writer, sourceAbs string, arcName string) error {
	source, err := os.Open(sourceAbs)
	if err != nil {
		return err
	}
	defer source.Close()

	dest, err := zw.Create(arcName)
	if err != nil {
		return err
	}

	_, err = io.Copy(dest, source)
	return err
}

// SuggestedName derives the download filename for a selection: the final
// segment for a single path, a generic stem otherwise.
func SuggestedName(paths []string) string {
	if len(paths) == 1 {
		base := path.Base(strings.TrimRight(filepath.ToSlash(paths[0]), "/"))
		if base != "" && base != "." && base != "/" {
			return base + ".zip"
		}
	}

	return "homeshare.zip"
}
