// Package storage persists notes as one JSON file per note.
package storage

import (
	"iter"

	"github.com/starford/zametka/internal/models"
)

// Provider is the interface for note persistence keyed by integer ID.
//
// Failures never surface as errors: they are reported on the store's warning
// channel and the operation returns its failure indicator instead.
type Provider interface {
	// Add stores n under a freshly allocated ID and returns it with the ID set.
	Add(n models.Note) (models.Note, bool)
	// Get returns the note stored under id.
	Get(id int) (models.Note, bool)
	// Exists reports whether a record file for id is present.
	Exists(id int) bool
	// QueryAll yields every readable note in directory order.
	QueryAll() iter.Seq[models.Note]
	// Scan yields every candidate record with its decode error, if any.
	Scan() iter.Seq2[models.Note, error]
	// Update rewrites the record of an existing note.
	Update(n models.Note) bool
	// Delete removes the record for id and returns its last readable state.
	Delete(id int) (models.Note, bool)
}

// Verify *FS satisfies Provider at compile time.
var _ Provider = (*FS)(nil)
