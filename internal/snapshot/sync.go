package snapshot

import (
	"log/slog"

	"github.com/starford/zametka/internal/checksum"
	"github.com/starford/zametka/internal/models"
	"github.com/starford/zametka/internal/storage"
)

// Stats counts what a Sync pass did.
type Stats struct {
	Upserted  int
	Unchanged int
	Removed   int
	Skipped   int
}

// Sync walks the store and brings the snapshot up to date:
//   - new and changed notes are upserted
//   - rows whose note is gone or no longer readable are deleted
func Sync(db *DB, store storage.Provider, logger *slog.Logger) (Stats, error) {
	var st Stats

	checksums, err := db.Checksums()
	if err != nil {
		return st, err
	}

	seen := make(map[int]struct{}, len(checksums))
	for n, err := range store.Scan() {
		if err != nil {
			st.Skipped++
			logger.Warn("sync: unreadable note", slog.Int("id", n.ID), slog.String("error", err.Error()))
			continue
		}
		seen[n.ID] = struct{}{}

		r, err := rowOf(n)
		if err != nil {
			st.Skipped++
			logger.Warn("sync: encode failed", slog.Int("id", n.ID), slog.String("error", err.Error()))
			continue
		}
		if checksums[n.ID] == r.Checksum {
			st.Unchanged++
			continue
		}
		if err := db.Upsert(r); err != nil {
			logger.Warn("sync: upsert failed", slog.Int("id", n.ID), slog.String("error", err.Error()))
			continue
		}
		st.Upserted++
		logger.Debug("sync: mirrored", slog.Int("id", n.ID))
	}

	for id := range checksums {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := db.Delete(id); err != nil {
			logger.Warn("sync: delete failed", slog.Int("id", id), slog.String("error", err.Error()))
			continue
		}
		st.Removed++
		logger.Debug("sync: removed stale", slog.Int("id", id))
	}

	return st, nil
}

// rowOf fingerprints n by its canonical encoding, so a rewrite that changes
// nothing keeps the same checksum.
func rowOf(n models.Note) (Row, error) {
	data, err := storage.Encode(n)
	if err != nil {
		return Row{}, err
	}
	return Row{Note: n, Checksum: checksum.Sum(data)}, nil
}
