package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/zametka/internal/models"
	"github.com/starford/zametka/internal/testutil"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "zametka-test-*.db")
	require.NoError(t, err)
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sample(id int, title string) models.Note {
	n := models.NewNote(title, "body of "+title, time.Date(2024, 2, 29, 23, 59, 1, 500000000, time.Local))
	n.ID = id
	return n
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	n, err := db.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	want := sample(7, "seven")
	require.NoError(t, db.Upsert(Row{Note: want, Checksum: "abc"}))

	got, ok, err := db.Get(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", got.Checksum)
	assert.Equal(t, want.Title, got.Note.Title)
	assert.Equal(t, want.Body, got.Note.Body)
	assert.True(t, want.CreationDate.Equal(got.Note.CreationDate))

	want.Title = "seven, edited"
	require.NoError(t, db.Upsert(Row{Note: want, Checksum: "def"}))
	got, _, err = db.Get(7)
	require.NoError(t, err)
	assert.Equal(t, "seven, edited", got.Note.Title)

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.Checksum(404)
	require.NoError(t, err)
	assert.Empty(t, cs)

	_, ok, err := db.Get(404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Upsert(Row{Note: sample(1, "x"), Checksum: "1"}))
	require.NoError(t, db.Delete(1))
	require.NoError(t, db.Delete(1))

	all, err := db.Checksums()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSync(t *testing.T) {
	db := testDB(t)
	store, _ := testutil.TestStore(t)
	logger := testutil.Logger()

	for _, title := range []string{"a", "b", "c"} {
		_, ok := store.Add(sample(0, title))
		require.True(t, ok)
	}

	st, err := Sync(db, store, logger)
	require.NoError(t, err)
	assert.Equal(t, Stats{Upserted: 3}, st)

	st, err = Sync(db, store, logger)
	require.NoError(t, err)
	assert.Equal(t, Stats{Unchanged: 3}, st)

	n, ok := store.Get(2)
	require.True(t, ok)
	n.Title = "b2"
	require.True(t, store.Update(n))
	_, ok = store.Delete(3)
	require.True(t, ok)
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "note00001.json"), []byte("{"), 0o644))

	st, err = Sync(db, store, logger)
	require.NoError(t, err)
	assert.Equal(t, Stats{Upserted: 1, Removed: 2, Skipped: 1}, st)

	row, ok, err := db.Get(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b2", row.Note.Title)

	ids, err := db.Checksums()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
