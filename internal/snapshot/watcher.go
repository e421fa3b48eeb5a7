package snapshot

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/zametka/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Store is what the watcher needs from the note store: the provider
// operations plus a way to map event paths back to note IDs.
type Store interface {
	storage.Provider
	Root() string
	IDFromPath(path string) (int, bool)
}

var _ Store = (*storage.FS)(nil)

// EventCallback is called after a watcher-driven snapshot change.
type EventCallback func(kind string, id int)

// Watch starts an fsnotify watcher on the notes directory and mirrors note
// file changes into db until ctx is cancelled. It calls cb (if non-nil)
// after each change to the snapshot.
//
// Removes and renames trigger a debounced Sync pass that catches anything
// the individual events missed.
func Watch(ctx context.Context, db *DB, store Store, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", store.Root()))

	notify := func(kind string, id int) {
		logger.Info("watcher: note "+kind, slog.Int("id", id))
		if cb != nil {
			cb(kind, id)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			id, ok := store.IDFromPath(filepath.Clean(ev.Name))
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind, changed := mirrorNote(db, store, id, logger)
				if changed {
					notify(kind, id)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if existed := deleteRow(db, id, logger); existed {
					notify(EventDeleted, id)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// mirrorNote re-reads note id and upserts it when its checksum changed.
// Unreadable notes are reported by the store and left alone here.
func mirrorNote(db *DB, store Store, id int, logger *slog.Logger) (string, bool) {
	n, ok := store.Get(id)
	if !ok {
		return "", false
	}
	r, err := rowOf(n)
	if err != nil {
		logger.Warn("watcher: encode failed", slog.Int("id", id), slog.String("error", err.Error()))
		return "", false
	}
	old, err := db.Checksum(id)
	if err != nil {
		logger.Warn("watcher: checksum lookup failed", slog.Int("id", id), slog.String("error", err.Error()))
		return "", false
	}
	if old == r.Checksum {
		return "", false
	}
	if err := db.Upsert(r); err != nil {
		logger.Warn("watcher: upsert failed", slog.Int("id", id), slog.String("error", err.Error()))
		return "", false
	}
	if old == "" {
		return EventCreated, true
	}
	return EventUpdated, true
}

func deleteRow(db *DB, id int, logger *slog.Logger) bool {
	old, err := db.Checksum(id)
	if err != nil || old == "" {
		return false
	}
	if err := db.Delete(id); err != nil {
		logger.Warn("watcher: delete failed", slog.Int("id", id), slog.String("error", err.Error()))
		return false
	}
	return true
}

// reconcile runs a full Sync and reports rows it created or removed.
func reconcile(db *DB, store Store, logger *slog.Logger, notify func(string, int)) {
	before, err := db.Checksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	if _, err := Sync(db, store, logger); err != nil {
		logger.Warn("reconcile: sync failed", slog.String("error", err.Error()))
		return
	}
	after, err := db.Checksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			notify(EventDeleted, id)
		}
	}
	for id, cs := range after {
		switch old, ok := before[id]; {
		case !ok:
			notify(EventCreated, id)
		case old != cs:
			notify(EventUpdated, id)
		}
	}
}
