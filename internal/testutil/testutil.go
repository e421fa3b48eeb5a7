// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/starford/zametka/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Issues collects the warnings a store reports.
type Issues struct {
	mu   sync.Mutex
	list []storage.Issue
}

// Report records i. It is safe to pass as a storage.Reporter.
func (c *Issues) Report(i storage.Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, i)
}

// All returns a copy of the recorded issues.
func (c *Issues) All() []storage.Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]storage.Issue(nil), c.list...)
}

// TestStore creates a store over a temporary directory.
func TestStore(t *testing.T) (*storage.FS, *Issues) {
	t.Helper()
	issues := &Issues{}
	store, err := storage.NewFS(t.TempDir(),
		storage.WithLogger(Logger()),
		storage.WithReporter(issues.Report))
	if err != nil {
		t.Fatal(err)
	}
	return store, issues
}
