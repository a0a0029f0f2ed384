package runlock_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"photoorg/internal/runlock"
	"photoorg/internal/services"
)

func TestAcquireIsExclusivePerTarget(t *testing.T) {
	lockDir := filepath.Join(t.TempDir(), "locks")
	target := t.TempDir()

	first, err := runlock.Acquire(lockDir, target)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = first.Release() })
	want, err := runlock.PathFor(lockDir, target)
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	if first.Path() != want || first.Target() != target {
		t.Fatalf("lock reports path=%q target=%q, want %q and %q", first.Path(), first.Target(), want, target)
	}

	if _, err := runlock.Acquire(lockDir, target); !errors.Is(err, services.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	other, err := runlock.Acquire(lockDir, t.TempDir())
	if err != nil {
		t.Fatalf("other target should lock independently: %v", err)
	}
	if err := other.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := runlock.Acquire(lockDir, target)
	if err != nil {
		t.Fatalf("re-acquire after release: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestPathForIsStableAndOutsideTarget(t *testing.T) {
	lockDir := filepath.Join(t.TempDir(), "locks")
	target := t.TempDir()

	a, err := runlock.PathFor(lockDir, target)
	if err != nil {
		t.Fatal(err)
	}
	b, err := runlock.PathFor(lockDir, target+string(filepath.Separator))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected same lock path, got %s and %s", a, b)
	}
	if filepath.Dir(a) != lockDir {
		t.Fatalf("lock %s not inside %s", a, lockDir)
	}
	if strings.HasPrefix(a, target) {
		t.Fatalf("lock %s must not live in the target tree", a)
	}
}

func TestReleaseNilLock(t *testing.T) {
	var l *runlock.Lock
	if err := l.Release(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
