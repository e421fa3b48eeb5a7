package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/starford/zametka/internal/models"
)

// SortKey names the field a note listing is ordered by.
type SortKey int

const (
	SortByID SortKey = iota
	SortByCreated
	SortByModified
	SortByTitle
)

func (k SortKey) String() string {
	switch k {
	case SortByCreated:
		return "created"
	case SortByModified:
		return "modified"
	case SortByTitle:
		return "title"
	default:
		return "id"
	}
}

// ParseSortKey accepts the key names and their one-letter forms.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "i", "id":
		return SortByID, nil
	case "c", "created", "creation":
		return SortByCreated, nil
	case "m", "modified", "last_change":
		return SortByModified, nil
	case "t", "title":
		return SortByTitle, nil
	}
	return SortByID, fmt.Errorf("unknown sort key %q", s)
}

// Sort orders notes in place by key. Ties fall back to ID so the result does
// not depend on directory order.
func Sort(notes []models.Note, key SortKey, desc bool) {
	folder := cases.Fold()
	compare := func(a, b models.Note) int {
		var c int
		switch key {
		case SortByCreated:
			c = a.CreationDate.Compare(b.CreationDate)
		case SortByModified:
			c = a.LastChangeDate.Compare(b.LastChangeDate)
		case SortByTitle:
			c = cmp.Compare(folder.String(a.Title), folder.String(b.Title))
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	}
	slices.SortStableFunc(notes, compare)
}
