package mcpserver

// NoteFormatContract describes how notes are stored on disk and how the
// tools expect dates and times to be written.
const NoteFormatContract = `# Zametka Note Format

Every note is stored as one JSON file named ` + "`note<NNNNN>.json`" + ` inside the
notes directory, where ` + "`<NNNNN>`" + ` is the note ID zero-padded to the
configured width (5 digits by default).

## Record

` + "```" + `json
{
  "creation_date": "2024-03-10T14:25:30.123456+01:00",
  "last_change_date": "2024-03-10T14:25:30.123456+01:00",
  "title": "Shopping",
  "body": [
    "milk",
    "bread"
  ]
}
` + "```" + `

## Rules

1. The record holds exactly these four keys; anything else makes it unreadable.
2. ` + "`body`" + ` is the note text split into lines. An empty body is ` + "`[]`" + `.
3. Timestamps are ISO-8601 with a UTC offset, to the microsecond.
4. IDs are assigned by the store as the highest existing ID plus one.
   Do not create files by hand; use the ` + "`create_note`" + ` tool.

## Tool arguments

- Dates are written ` + "`YYYY-MM-DD`" + ` and times of day ` + "`HH:MM`" + ` or ` + "`HH:MM:SS`" + `,
  both in the server's local time zone.
- ` + "`attribute`" + ` selects the timestamp a range looks at: ` + "`created`" + ` (default)
  or ` + "`modified`" + `.
- Range bounds are inclusive and may be given in either order.
- Title search is a case-insensitive substring match; an empty sample matches nothing.
`
