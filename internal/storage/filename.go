package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/zametka/internal/apperr"
)

const (
	filenamePrefix = "note"
	filenameExt    = ".json"

	// DefaultDigits is the width of the zero-padded ID in note filenames.
	DefaultDigits = 5
	// MaxDigits bounds the width so that every ID fits in an int.
	MaxDigits = 9
)

// layout converts between note IDs and filenames of a fixed digit width.
type layout struct {
	digits int
}

// pattern is the glob matching every candidate note filename.
func (l layout) pattern() string {
	return filenamePrefix + strings.Repeat("?", l.digits) + filenameExt
}

func (l layout) maxID() int {
	n := 1
	for range l.digits {
		n *= 10
	}
	return n - 1
}

func (l layout) filename(id int) (string, error) {
	if id < 1 || id > l.maxID() {
		return "", fmt.Errorf("storage: id %d outside 1..%d: %w", id, l.maxID(), apperr.ErrIDOutOfRange)
	}
	return fmt.Sprintf("%s%0*d%s", filenamePrefix, l.digits, id, filenameExt), nil
}

// parseID extracts the ID from a note filename. Names that match the glob
// but carry anything other than digits in the ID slot are rejected.
func (l layout) parseID(name string) (int, bool) {
	if len(name) != len(filenamePrefix)+l.digits+len(filenameExt) {
		return 0, false
	}
	if ok, err := doublestar.Match(l.pattern(), name); err != nil || !ok {
		return 0, false
	}
	digits := name[len(filenamePrefix) : len(filenamePrefix)+l.digits]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
