// Package query derives filtered views over a note enumeration. Every filter
// is a single lazy pass; none of them sort.
package query

import (
	"iter"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/starford/zametka/internal/models"
)

// ByTitle yields notes whose title contains sample, ignoring case. An empty
// sample matches nothing.
func ByTitle(notes iter.Seq[models.Note], sample string) iter.Seq[models.Note] {
	if sample == "" {
		return empty
	}
	folder := cases.Fold()
	needle := folder.String(sample)
	return filter(notes, func(n models.Note) bool {
		return strings.Contains(folder.String(n.Title), needle)
	})
}

// ByDateRange yields notes whose attr timestamp falls on a calendar day
// between from and to, inclusive. The time of day is ignored and the bounds
// may be given in either order.
func ByDateRange(notes iter.Seq[models.Note], from, to time.Time, attr models.DateAttribute) iter.Seq[models.Note] {
	lo, hi := dayOf(from), dayOf(to)
	if hi < lo {
		lo, hi = hi, lo
	}
	return filter(notes, func(n models.Note) bool {
		d := dayOf(attr.Of(n))
		return lo <= d && d <= hi
	})
}

// ByDaytimeRange yields notes whose attr timestamp has a time of day between
// from and to, inclusive, on any date. Reversed bounds are swapped; the range
// never wraps past midnight.
func ByDaytimeRange(notes iter.Seq[models.Note], from, to time.Time, attr models.DateAttribute) iter.Seq[models.Note] {
	lo, hi := clockOf(from), clockOf(to)
	if hi < lo {
		lo, hi = hi, lo
	}
	return filter(notes, func(n models.Note) bool {
		c := clockOf(attr.Of(n))
		return lo <= c && c <= hi
	})
}

func filter(notes iter.Seq[models.Note], keep func(models.Note) bool) iter.Seq[models.Note] {
	return func(yield func(models.Note) bool) {
		for n := range notes {
			if keep(n) && !yield(n) {
				return
			}
		}
	}
}

func empty(func(models.Note) bool) {}

// dayOf maps the calendar date of t, read on t's own wall clock, to an
// ordinal that sorts like the date.
func dayOf(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// clockOf returns the time elapsed since midnight on t's wall clock.
func clockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
