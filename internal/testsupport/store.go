package testsupport

import (
	"testing"

	"photoorg/internal/config"
	"photoorg/internal/history"
)

// MustOpenHistory opens the run history store for the provided config and
// registers cleanup with the test.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
