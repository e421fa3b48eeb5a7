package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/zametka/internal/apperr"
	"github.com/starford/zametka/internal/models"
)

const (
	tempFilePrefix = ".zametka-tmp-*"
	readDirBatch   = 64
)

// Issue describes a record that could not be read, written or removed.
type Issue struct {
	Op   string
	ID   int
	File string
	Err  error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s note %d (%s): %v", i.Op, i.ID, i.File, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}

// Reporter receives every warning the store emits.
type Reporter func(Issue)

// FSOption configures an FS.
type FSOption func(*FS)

// WithDigits sets the width of the zero-padded ID in note filenames.
func WithDigits(n int) FSOption {
	return func(f *FS) {
		f.layout.digits = n
	}
}

// WithLogger sets the logger warnings are written to.
func WithLogger(l *slog.Logger) FSOption {
	return func(f *FS) {
		f.logger = l
	}
}

// WithReporter registers a diagnostic callback for skipped or failed records.
func WithReporter(r Reporter) FSOption {
	return func(f *FS) {
		f.reporter = r
	}
}

// FS implements Provider backed by one directory on the local file system.
// It assumes a single caller; there is no locking.
type FS struct {
	root     string // absolute path to the notes directory
	layout   layout
	logger   *slog.Logger
	reporter Reporter
}

// NewFS opens the notes directory at root, creating it if it does not exist.
// A root that exists but is not a directory is a configuration error.
func NewFS(root string, opts ...FSOption) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}

	f := &FS{root: abs, layout: layout{digits: DefaultDigits}}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.layout.digits < 1 || f.layout.digits > MaxDigits {
		return nil, fmt.Errorf("storage: digits must be within 1..%d, got %d: %w", MaxDigits, f.layout.digits, apperr.ErrConfiguration)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create root: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("storage: stat root: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("storage: root is not a directory: %s: %w", abs, apperr.ErrConfiguration)
	}
	return f, nil
}

// Root returns the absolute path of the notes directory.
func (f *FS) Root() string {
	return f.root
}

// IDFromPath returns the note ID encoded in path if it names a record file
// directly inside the notes directory.
func (f *FS) IDFromPath(path string) (int, bool) {
	if filepath.Dir(path) != f.root {
		return 0, false
	}
	return f.layout.parseID(filepath.Base(path))
}

// Add allocates max(existing IDs)+1 and writes n under it.
func (f *FS) Add(n models.Note) (models.Note, bool) {
	id, err := f.nextID()
	if err != nil {
		f.warn("add", 0, "", err)
		return models.Note{}, false
	}
	name, err := f.layout.filename(id)
	if err != nil {
		f.warn("add", id, "", err)
		return models.Note{}, false
	}
	path := filepath.Join(f.root, name)
	if _, err := os.Lstat(path); err == nil {
		f.warn("add", id, name, fmt.Errorf("storage: %s already exists: %w", name, apperr.ErrStorage))
		return models.Note{}, false
	} else if !errors.Is(err, fs.ErrNotExist) {
		f.warn("add", id, name, fmt.Errorf("storage: stat %s: %w", name, err))
		return models.Note{}, false
	}

	n.ID = id
	if err := f.writeNote(path, n); err != nil {
		f.warn("add", id, name, err)
		return models.Note{}, false
	}
	return n, true
}

// Get reads the note stored under id. A missing record is not reported.
func (f *FS) Get(id int) (models.Note, bool) {
	path, err := f.path(id)
	if err != nil {
		f.warn("get", id, "", err)
		return models.Note{}, false
	}
	n, err := readNote(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.warn("get", id, filepath.Base(path), err)
		}
		return models.Note{}, false
	}
	n.ID = id
	return n, true
}

// Exists reports whether a record file for id is present.
func (f *FS) Exists(id int) bool {
	path, err := f.path(id)
	if err != nil {
		return false
	}
	_, err = os.Lstat(path)
	return err == nil
}

// QueryAll yields every readable note in directory order, which is neither
// numeric nor stable. Unreadable records are reported and skipped. Each
// iteration re-reads the directory.
func (f *FS) QueryAll() iter.Seq[models.Note] {
	return func(yield func(models.Note) bool) {
		for n, err := range f.Scan() {
			if err != nil {
				name, _ := f.layout.filename(n.ID)
				f.warn("query", n.ID, name, err)
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Scan yields one result per non-empty regular record file. On failure the
// note carries only its ID and the error says why it could not be decoded.
func (f *FS) Scan() iter.Seq2[models.Note, error] {
	return func(yield func(models.Note, error) bool) {
		for id, entry := range f.entries("scan") {
			path := filepath.Join(f.root, entry.Name())
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
				continue
			}
			n, err := readNote(path)
			n.ID = id
			if !yield(n, err) {
				return
			}
		}
	}
}

// Update rewrites the whole record of n. The record must already exist.
func (f *FS) Update(n models.Note) bool {
	path, err := f.path(n.ID)
	if err != nil {
		f.warn("update", n.ID, "", err)
		return false
	}
	name := filepath.Base(path)
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("storage: update %s: %w", name, apperr.ErrNotFound)
		}
		f.warn("update", n.ID, name, err)
		return false
	}
	if err := f.writeNote(path, n); err != nil {
		f.warn("update", n.ID, name, err)
		return false
	}
	return true
}

// Delete removes the record for id. The returned note is the record as read
// just before removal; removal is attempted even when it cannot be read.
func (f *FS) Delete(id int) (models.Note, bool) {
	path, err := f.path(id)
	if err != nil {
		f.warn("delete", id, "", err)
		return models.Note{}, false
	}
	name := filepath.Base(path)
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return models.Note{}, false
	}

	n, readErr := readNote(path)
	if readErr != nil {
		f.warn("delete", id, name, readErr)
	}
	if err := os.Remove(path); err != nil {
		f.warn("delete", id, name, fmt.Errorf("storage: remove %s: %w: %w", name, apperr.ErrStorage, err))
	}
	if readErr != nil {
		return models.Note{}, false
	}
	n.ID = id
	return n, true
}

func (f *FS) path(id int) (string, error) {
	name, err := f.layout.filename(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.root, name), nil
}

func (f *FS) nextID() (int, error) {
	maxID := 0
	err := f.readDir(func(id int, _ fs.DirEntry) bool {
		maxID = max(maxID, id)
		return true
	})
	if err != nil {
		return 0, err
	}
	return maxID + 1, nil
}

// readDir calls fn for every note filename in the directory, in the order the
// file system returns them.
func (f *FS) readDir(fn func(int, fs.DirEntry) bool) error {
	dir, err := os.Open(f.root)
	if err != nil {
		return fmt.Errorf("storage: open root: %w", err)
	}
	defer dir.Close()

	for {
		batch, err := dir.ReadDir(readDirBatch)
		for _, entry := range batch {
			id, ok := f.layout.parseID(entry.Name())
			if !ok {
				continue
			}
			if !fn(id, entry) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("storage: read root: %w", err)
		}
	}
}

func (f *FS) entries(op string) iter.Seq2[int, fs.DirEntry] {
	return func(yield func(int, fs.DirEntry) bool) {
		if err := f.readDir(yield); err != nil {
			f.warn(op, 0, "", err)
		}
	}
}

func (f *FS) writeNote(path string, n models.Note) error {
	data, err := Encode(n)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func (f *FS) warn(op string, id int, file string, err error) {
	f.logger.Warn("storage: "+op+" failed",
		slog.Int("id", id),
		slog.String("file", file),
		slog.String("error", err.Error()))
	if f.reporter != nil {
		f.reporter(Issue{Op: op, ID: id, File: file, Err: err})
	}
}

func readNote(path string) (models.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Note{}, fmt.Errorf("storage: read %s: %w", filepath.Base(path), err)
	}
	return Decode(data)
}

// writeFileAtomic writes content: tmp file → fsync → rename.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempFilePrefix)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w: %w", apperr.ErrStorage, err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w: %w", apperr.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w: %w", apperr.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w: %w", apperr.ErrStorage, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w: %w", apperr.ErrStorage, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w: %w", apperr.ErrStorage, err)
	}
	success = true
	return nil
}
