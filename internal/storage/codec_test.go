package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/zametka/internal/apperr"
	"github.com/starford/zametka/internal/models"
)

func TestEncode_Shape(t *testing.T) {
	zone := time.FixedZone("MSK", 3*60*60)
	n := models.Note{
		ID:             7,
		CreationDate:   time.Date(2023, 5, 1, 9, 30, 0, 0, zone),
		LastChangeDate: time.Date(2023, 5, 2, 18, 5, 1, 250000000, zone),
		Title:          "Покупки <list>",
		Body:           "milk\nbread",
	}
	data, err := Encode(n)
	require.NoError(t, err)

	want := `{
  "creation_date": "2023-05-01T09:30:00+03:00",
  "last_change_date": "2023-05-02T18:05:01.250000+03:00",
  "title": "Покупки <list>",
  "body": [
    "milk",
    "bread"
  ]
}
`
	assert.Equal(t, want, string(data))
	assert.NotContains(t, string(data), `"id"`)
}

func TestEncode_EmptyBodyIsArray(t *testing.T) {
	data, err := Encode(models.Note{Title: "t"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"body": []`)
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"one", []string{"one"}},
		{"one\n", []string{"one"}},
		{"one\n\n", []string{"one", ""}},
		{"\n", []string{""}},
		{"a\r\nb\rc", []string{"a", "b", "c"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, splitLines(c.in), "splitLines(%q)", c.in)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	raw := []byte(`{
  "creation_date": "2024-01-15T08:00:00+00:00",
  "last_change_date": "2024-01-16T21:45:12.000123+05:30",
  "title": "Meeting notes",
  "body": [
    "agenda",
    "",
    "  - budget"
  ]
}
`)
	n, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, n.ID)
	assert.Equal(t, "Meeting notes", n.Title)
	assert.Equal(t, "agenda\n\n  - budget", n.Body)
	assert.Equal(t, 123000, n.LastChangeDate.Nanosecond())

	again, err := Encode(n)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(again))
}

func TestDecode_NaiveTimestampIsLocal(t *testing.T) {
	raw := []byte(`{"creation_date": "2022-12-31 23:59:58.500000", "last_change_date": "2022-12-31 23:59:59", "title": "", "body": []}`)
	n, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, time.Local, n.CreationDate.Location())
	assert.Equal(t, 58, n.CreationDate.Second())
	assert.Equal(t, 500000000, n.CreationDate.Nanosecond())
	assert.Equal(t, "", n.Body)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"invalid json":     `{"title": `,
		"not an object":    `["a"]`,
		"null":             `null`,
		"missing key":      `{"creation_date": "2024-01-01T00:00:00+00:00", "last_change_date": "2024-01-01T00:00:00+00:00", "title": "x"}`,
		"extra id key":     `{"id": 1, "creation_date": "2024-01-01T00:00:00+00:00", "last_change_date": "2024-01-01T00:00:00+00:00", "title": "x", "body": []}`,
		"title not string": `{"creation_date": "2024-01-01T00:00:00+00:00", "last_change_date": "2024-01-01T00:00:00+00:00", "title": 5, "body": []}`,
		"null title":       `{"creation_date": "2024-01-01T00:00:00+00:00", "last_change_date": "2024-01-01T00:00:00+00:00", "title": null, "body": []}`,
		"body string":      `{"creation_date": "2024-01-01T00:00:00+00:00", "last_change_date": "2024-01-01T00:00:00+00:00", "title": "x", "body": "text"}`,
		"null body line":   `{"creation_date": "2024-01-01T00:00:00+00:00", "last_change_date": "2024-01-01T00:00:00+00:00", "title": "x", "body": ["a", null]}`,
		"bad timestamp":    `{"creation_date": "yesterday", "last_change_date": "2024-01-01T00:00:00+00:00", "title": "x", "body": []}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrDecode)
		})
	}
}
