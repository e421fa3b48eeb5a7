package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/zametka/internal/models"
)

// Row is a mirrored note together with the checksum of its encoded record.
type Row struct {
	Note     models.Note
	Checksum string
}

// Upsert inserts or replaces the row for r.Note.ID.
func (db *DB) Upsert(r Row) error {
	_, err := db.conn.Exec(`
		INSERT INTO notes (id, title, body, creation_date, last_change_date, checksum)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title            = excluded.title,
			body             = excluded.body,
			creation_date    = excluded.creation_date,
			last_change_date = excluded.last_change_date,
			checksum         = excluded.checksum
	`, r.Note.ID, r.Note.Title, r.Note.Body,
		r.Note.CreationDate.UTC(), r.Note.LastChangeDate.UTC(), r.Checksum)
	if err != nil {
		return fmt.Errorf("snapshot: upsert note %d: %w", r.Note.ID, err)
	}
	return nil
}

// Delete removes the row for id. Deleting a missing row is not an error.
func (db *DB) Delete(id int) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("snapshot: delete note %d: %w", id, err)
	}
	return nil
}

// Get returns the row for id, or false if there is none.
func (db *DB) Get(id int) (Row, bool, error) {
	var (
		r                Row
		created, changed time.Time
	)
	err := db.conn.QueryRow(`
		SELECT id, title, body, creation_date, last_change_date, checksum
		FROM notes WHERE id = ?
	`, id).Scan(&r.Note.ID, &r.Note.Title, &r.Note.Body, &created, &changed, &r.Checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("snapshot: get note %d: %w", id, err)
	}
	r.Note.CreationDate = created.Local()
	r.Note.LastChangeDate = changed.Local()
	return r, true, nil
}

// Checksum returns the stored checksum for id, or "" if there is no row.
func (db *DB) Checksum(id int) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("snapshot: checksum %d: %w", id, err)
	}
	return cs, nil
}

// Checksums returns the checksum of every mirrored note keyed by ID.
func (db *DB) Checksums() (map[int]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var (
			id int
			cs string
		)
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// Count returns the number of mirrored notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("snapshot: count: %w", err)
	}
	return n, nil
}
