// Package models defines the domain types for zametka.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Note is a user-authored record. ID is zero until the store assigns one.
type Note struct {
	ID             int       `json:"id"`
	CreationDate   time.Time `json:"creation_date"`
	LastChangeDate time.Time `json:"last_change_date"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
}

// NewNote returns an unsaved note with both timestamps set to now.
func NewNote(title, body string, now time.Time) Note {
	now = now.Truncate(time.Microsecond)
	return Note{
		CreationDate:   now,
		LastChangeDate: now,
		Title:          title,
		Body:           body,
	}
}

// Saved reports whether the note has been assigned an ID by the store.
func (n Note) Saved() bool {
	return n.ID > 0
}

// Touch records a modification at now.
func (n *Note) Touch(now time.Time) {
	n.LastChangeDate = now.Truncate(time.Microsecond)
}

// Now returns the current time at the precision notes are stored with.
func Now() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// DateAttribute selects which timestamp a range query looks at.
type DateAttribute int

const (
	Created DateAttribute = iota
	Modified
)

// Of returns the timestamp of n selected by a.
func (a DateAttribute) Of(n Note) time.Time {
	if a == Modified {
		return n.LastChangeDate
	}
	return n.CreationDate
}

func (a DateAttribute) String() string {
	if a == Modified {
		return "modified"
	}
	return "created"
}

// ParseDateAttribute accepts the names used by the CLI and MCP tools.
func ParseDateAttribute(s string) (DateAttribute, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "created", "creation", "creation_date":
		return Created, nil
	case "m", "modified", "last_change", "last_change_date":
		return Modified, nil
	}
	return Created, fmt.Errorf("unknown date attribute %q", s)
}
