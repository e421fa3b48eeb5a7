// Package noteservice is the repository the presentation layers talk to. It
// speaks only in notes and scalars; file names and JSON stay in storage.
package noteservice

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/starford/zametka/internal/apperr"
	"github.com/starford/zametka/internal/models"
	"github.com/starford/zametka/internal/query"
	"github.com/starford/zametka/internal/storage"
)

// Service coordinates the note store and the query layer.
type Service struct {
	store storage.Provider
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the clock used to stamp new and edited notes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new note service.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{store: store, now: models.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNote stamps a new note with the current time and stores it.
func (s *Service) CreateNote(ctx context.Context, title, body string) (models.Note, error) {
	return s.AddNote(ctx, models.NewNote(title, body, s.now()))
}

// AddNote stores an unsaved note and returns it with its new ID.
func (s *Service) AddNote(_ context.Context, n models.Note) (models.Note, error) {
	if n.ID != 0 {
		return models.Note{}, fmt.Errorf("noteservice: add note %d: already saved: %w", n.ID, apperr.ErrInvalidNote)
	}
	stored, ok := s.store.Add(n)
	if !ok {
		return models.Note{}, fmt.Errorf("noteservice: add note: %w", apperr.ErrStorage)
	}
	return stored, nil
}

// GetNote returns the note with the given ID.
func (s *Service) GetNote(_ context.Context, id int) (models.Note, error) {
	if id < 1 {
		return models.Note{}, fmt.Errorf("noteservice: get note %d: %w", id, apperr.ErrInvalidID)
	}
	n, ok := s.store.Get(id)
	if !ok {
		return models.Note{}, fmt.Errorf("noteservice: get note %d: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

// AllNotes returns every readable note in store order.
func (s *Service) AllNotes(_ context.Context) ([]models.Note, error) {
	return nonNilSlice(slices.Collect(s.store.QueryAll())), nil
}

// NotesByTitle returns notes whose title contains sample, ignoring case.
func (s *Service) NotesByTitle(_ context.Context, sample string) ([]models.Note, error) {
	return nonNilSlice(slices.Collect(query.ByTitle(s.store.QueryAll(), sample))), nil
}

// NotesByDateRange returns notes whose attr date lies within [from, to].
func (s *Service) NotesByDateRange(_ context.Context, from, to time.Time, attr models.DateAttribute) ([]models.Note, error) {
	return nonNilSlice(slices.Collect(query.ByDateRange(s.store.QueryAll(), from, to, attr))), nil
}

// NotesByDaytimeRange returns notes whose attr time of day lies within [from, to].
func (s *Service) NotesByDaytimeRange(_ context.Context, from, to time.Time, attr models.DateAttribute) ([]models.Note, error) {
	return nonNilSlice(slices.Collect(query.ByDaytimeRange(s.store.QueryAll(), from, to, attr))), nil
}

// UpdateNote rewrites a stored note as given, timestamps included.
func (s *Service) UpdateNote(_ context.Context, n models.Note) error {
	if !n.Saved() {
		return fmt.Errorf("noteservice: update note: unsaved: %w", apperr.ErrInvalidNote)
	}
	if !s.store.Exists(n.ID) {
		return fmt.Errorf("noteservice: update note %d: %w", n.ID, apperr.ErrNotFound)
	}
	if !s.store.Update(n) {
		return fmt.Errorf("noteservice: update note %d: %w", n.ID, apperr.ErrStorage)
	}
	return nil
}

// EditNote replaces the title and body of a stored note and records the
// change time.
func (s *Service) EditNote(ctx context.Context, id int, title, body string) (models.Note, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	n.Title = title
	n.Body = body
	n.Touch(s.now())
	if err := s.UpdateNote(ctx, n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

// DeleteNote removes a note and returns its last readable state.
func (s *Service) DeleteNote(_ context.Context, id int) (models.Note, error) {
	if id < 1 {
		return models.Note{}, fmt.Errorf("noteservice: delete note %d: %w", id, apperr.ErrInvalidID)
	}
	n, ok := s.store.Delete(id)
	if !ok {
		return models.Note{}, fmt.Errorf("noteservice: delete note %d: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
