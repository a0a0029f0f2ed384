package organizer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"photoorg/internal/services"
)

// ListSources returns the regular files directly inside dir, sorted by name.
// Subdirectories are skipped and symlinks are followed.
func ListSources(dir string) ([]SourceFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrSourceNotFound, stageName, "list sources", dir, err)
		}
		return nil, services.Wrap(services.ErrIO, stageName, "list sources", dir, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, stageName, "list sources", dir+" is not a directory", nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, stageName, "read source dir", dir, err)
	}

	files := make([]SourceFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fi, err := os.Stat(path)
		if err != nil {
			// Vanished between ReadDir and Stat, or a dangling symlink.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, services.Wrap(services.ErrIO, stageName, "stat source", path, err)
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, SourceFile{
			Name:    entry.Name(),
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return files, nil
}

// TotalSize sums the sizes of files.
func TotalSize(files []SourceFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}

// targetUnavailableErrors lists syscall errors that indicate the target
// filesystem went away rather than a problem with one file.
var targetUnavailableErrors = []error{
	syscall.ENODEV,
	syscall.ENOTCONN,
	syscall.EHOSTDOWN,
	syscall.EHOSTUNREACH,
	syscall.ETIMEDOUT,
	syscall.EIO,
	syscall.ESTALE,
	syscall.ENOSPC,
	syscall.EROFS,
}

func isTargetUnavailable(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range targetUnavailableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func failureReason(base string, err error) string {
	switch {
	case errors.Is(err, services.ErrDestinationExists):
		return "destination exists"
	case isTargetUnavailable(err):
		return base + ": target unavailable"
	case errors.Is(err, fs.ErrPermission):
		return base + ": permission denied"
	default:
		return base
	}
}
