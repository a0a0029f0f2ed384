package testsupport

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"sort"
	"testing"
)

// WriteFile fills the target path with size bytes of a repeating filler
// pattern. The content is never a valid image container. A size <= 0 writes
// a single byte.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()
	if size <= 0 {
		size = 1
	}
	WriteBytes(t, path, bytes.Repeat([]byte{0x42}, size))
}

// WriteText writes content verbatim to path.
func WriteText(t testing.TB, path, content string) {
	t.Helper()
	WriteBytes(t, path, []byte(content))
}

// ListNames returns the sorted entry names of dir, or nil when dir is absent.
func ListNames(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// MustExist fails the test when path is missing.
func MustExist(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

// MustNotExist fails the test when path is present.
func MustNotExist(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected %s to be absent, stat err=%v", path, err)
	}
}
