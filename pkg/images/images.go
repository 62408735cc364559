// Package images enumerates the local batch directory and annotates each
// candidate file with the metadata the upload pipeline needs: size, MIME type,
// and the product handle derived from the file name.
package images

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/wovenhouse/shopmedia/pkg/errors"
)

// DefaultMimeType is used when neither the extension nor the file content
// identifies the image format.
const DefaultMimeType = "image/jpeg"

// ImageFile describes one candidate file in the batch directory.
// Immutable; scoped to a single pipeline iteration.
type ImageFile struct {
	Path     string
	Name     string // base name, extension included
	Handle   string // base name, extension stripped, case preserved
	MimeType string
	Size     int64
}

// Enumerate lists the regular files in dir. Subdirectories and irregular
// entries are skipped. Enumeration order follows the filesystem; callers must
// not rely on it.
func Enumerate(dir string) ([]ImageFile, error) {
	slog.Info("images_scan_start", "dir", dir)

	info, err := os.Stat(dir)
	if err != nil {
		slog.Error("images_dir_stat_failed", "dir", dir, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrDirectoryUnreadable, dir, err)
	}
	if !info.IsDir() {
		slog.Error("images_dir_not_directory", "dir", dir)
		return nil, fmt.Errorf("%w: %s is not a directory", errors.ErrDirectoryUnreadable, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Error("images_dir_read_failed", "dir", dir, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrDirectoryUnreadable, dir, err)
	}

	var files []ImageFile
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			slog.Warn("image_stat_failed", "file", entry.Name(), "error", err)
			continue
		}

		path := filepath.Join(dir, entry.Name())
		files = append(files, ImageFile{
			Path:     path,
			Name:     entry.Name(),
			Handle:   DeriveHandle(entry.Name()),
			MimeType: DetectMimeType(path),
			Size:     fi.Size(),
		})
	}

	slog.Info("images_scan_complete", "dir", dir, "file_count", len(files))
	return files, nil
}

// DeriveHandle strips the extension from a file name: "blue-shirt.jpg"
// becomes "blue-shirt". Case is preserved.
func DeriveHandle(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DetectMimeType infers the MIME type of the file at path. The extension is
// authoritative when known; otherwise the content is sniffed, and files that
// still resolve to nothing specific get the generic image default.
func DetectMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	if mt, err := mimetype.DetectFile(path); err == nil && strings.HasPrefix(mt.String(), "image/") {
		return mt.String()
	}

	return DefaultMimeType
}
