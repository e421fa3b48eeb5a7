package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/starford/zametka/internal/apperr"
	"github.com/starford/zametka/internal/models"
)

// recordKeys is the exact key set of an encoded note. The ID is carried by
// the filename and never appears in the record.
var recordKeys = []string{"body", "creation_date", "last_change_date", "title"}

type record struct {
	CreationDate   string   `json:"creation_date"`
	LastChangeDate string   `json:"last_change_date"`
	Title          string   `json:"title"`
	Body           []string `json:"body"`
}

const (
	timestampLayout         = "2006-01-02T15:04:05-07:00"
	timestampLayoutMicros   = "2006-01-02T15:04:05.000000-07:00"
	naiveTimestampLayout    = "2006-01-02 15:04:05"
	naiveTimestampLayoutISO = "2006-01-02T15:04:05"
	awareTimestampLayout    = "2006-01-02 15:04:05Z07:00"
)

// Encode serializes n into its on-disk JSON form.
func Encode(n models.Note) ([]byte, error) {
	rec := record{
		CreationDate:   formatTimestamp(n.CreationDate),
		LastChangeDate: formatTimestamp(n.LastChangeDate),
		Title:          n.Title,
		Body:           splitLines(n.Body),
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("storage: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses an on-disk record. The returned note has no ID.
func Decode(data []byte) (models.Note, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.Note{}, fmt.Errorf("storage: decode: %w: %w", apperr.ErrDecode, err)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if !slices.Equal(keys, recordKeys) {
		return models.Note{}, fmt.Errorf("storage: decode: %w: keys %v, want %v", apperr.ErrDecode, keys, recordKeys)
	}

	var n models.Note
	var err error
	if n.CreationDate, err = decodeTimestamp(fields["creation_date"]); err != nil {
		return models.Note{}, decodeFieldError("creation_date", err)
	}
	if n.LastChangeDate, err = decodeTimestamp(fields["last_change_date"]); err != nil {
		return models.Note{}, decodeFieldError("last_change_date", err)
	}
	if n.Title, err = decodeString(fields["title"]); err != nil {
		return models.Note{}, decodeFieldError("title", err)
	}

	var lines []*string
	if err := json.Unmarshal(fields["body"], &lines); err != nil || lines == nil {
		return models.Note{}, decodeFieldError("body", fmt.Errorf("want an array of strings"))
	}
	body := make([]string, len(lines))
	for i, line := range lines {
		if line == nil {
			return models.Note{}, decodeFieldError("body", fmt.Errorf("line %d is null", i))
		}
		body[i] = *line
	}
	n.Body = strings.Join(body, "\n")
	return n, nil
}

func decodeFieldError(field string, err error) error {
	return fmt.Errorf("storage: decode %s: %w: %w", field, apperr.ErrDecode, err)
}

func decodeString(raw json.RawMessage) (string, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("value is null")
	}
	return *s, nil
}

func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	s, err := decodeString(raw)
	if err != nil {
		return time.Time{}, err
	}
	return parseTimestamp(s)
}

// formatTimestamp writes t with its UTC offset, adding microseconds only
// when they are non-zero.
func formatTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(timestampLayout)
	}
	return t.Format(timestampLayoutMicros)
}

// parseTimestamp accepts the offset form written by formatTimestamp, plain
// RFC 3339, and naive timestamps, which are read as local time.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, awareTimestampLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range []string{naiveTimestampLayout, naiveTimestampLayoutISO} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// splitLines breaks a body into lines. A single trailing line break does not
// start a new line, so "a\n" and "a" encode the same.
func splitLines(s string) []string {
	lines := []string{}
	if s == "" {
		return lines
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return append(lines, strings.Split(s, "\n")...)
}
