package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"photoorg/internal/services"
)

// CopyOptions controls CopyFile behaviour.
type CopyOptions struct {
	// Overwrite replaces an existing destination. When false an existing
	// destination fails with services.ErrDestinationExists.
	Overwrite bool
	// PreserveModTime stamps the destination with the source modification time.
	PreserveModTime bool
}

// copyContents is swapped in tests to simulate a failing write.
var copyContents = io.Copy

// CopyFile streams src to dst, keeping the source permission bits.
//
// The data is written to a temporary file next to dst and moved into place
// only once it is complete, so a failed copy never leaves a partial dst
// behind and never truncates an existing one. Without Overwrite the final
// step is a hard link, which fails atomically when dst already exists.
func CopyFile(src, dst string, opts CopyOptions) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s: not a regular file", src)
	}
	if !opts.Overwrite {
		if _, err := os.Lstat(dst); err == nil {
			return fmt.Errorf("%w: %s", services.ErrDestinationExists, dst)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.partial")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	written, err := copyContents(tmp, in)
	if err != nil {
		return fmt.Errorf("copy data: %w", err)
	}
	if written != info.Size() {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if opts.PreserveModTime {
		if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
			return fmt.Errorf("preserve mod time: %w", err)
		}
	}

	if opts.Overwrite {
		if err := os.Rename(tmpPath, dst); err != nil {
			return fmt.Errorf("move into place: %w", err)
		}
		return nil
	}
	return linkExclusive(tmpPath, dst)
}

// linkExclusive publishes tmpPath as dst without replacing an existing file.
// Filesystems without hard links fall back to a checked rename.
func linkExclusive(tmpPath, dst string) error {
	err := os.Link(tmpPath, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", services.ErrDestinationExists, dst)
	}
	if _, statErr := os.Lstat(dst); statErr == nil {
		return fmt.Errorf("%w: %s", services.ErrDestinationExists, dst)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}
	return nil
}

// SameFile reports whether a and b refer to the same file on disk. Missing
// paths are never the same file.
func SameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
