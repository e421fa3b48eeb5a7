package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/zametka/internal/noteservice"
	"github.com/starford/zametka/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	store, _ := testutil.TestStore(t)
	tick := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	svc := noteservice.NewService(store, noteservice.WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]server.ToolHandlerFunc{
		"create_note":           srv.createNote,
		"get_note":              srv.getNote,
		"list_notes":            srv.listNotes,
		"find_by_title":         srv.findByTitle,
		"find_by_date_range":    srv.findByDateRange,
		"find_by_daytime_range": srv.findByDaytimeRange,
		"update_note":           srv.updateNote,
		"delete_note":           srv.deleteNote,
	}
	h, ok := handlers[name]
	require.True(t, ok, "unknown tool: %s", name)

	result, err := srv.serialized(h)(context.Background(), req)
	require.NoError(t, err)
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decodeNote(t *testing.T, r *mcp.CallToolResult) noteDTO {
	t.Helper()
	require.False(t, r.IsError, resultText(r))
	var n noteDTO
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &n))
	return n
}

func decodeList(t *testing.T, r *mcp.CallToolResult) []int {
	t.Helper()
	require.False(t, r.IsError, resultText(r))
	var l listDTO
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &l))
	require.Equal(t, l.Total, len(l.Notes))
	ids := make([]int, 0, len(l.Notes))
	for _, n := range l.Notes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestCreateAndGetNote(t *testing.T) {
	srv := testServer(t)

	created := decodeNote(t, callTool(t, srv, "create_note", map[string]any{
		"title": "Hello",
		"body":  "line one\nline two",
	}))
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, created.CreationDate, created.LastChangeDate)

	got := decodeNote(t, callTool(t, srv, "get_note", map[string]any{"id": 1}))
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "line one\nline two", got.Body)
}

func TestCreateNote_MissingTitle(t *testing.T) {
	r := callTool(t, testServer(t), "create_note", map[string]any{"body": "x"})
	assert.True(t, r.IsError)
}

func TestGetNote_Missing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_note", map[string]any{"id": 5})
	assert.True(t, r.IsError)
	assert.Equal(t, "note 5 not found", resultText(r))

	r = callTool(t, srv, "get_note", map[string]any{"id": 0})
	assert.True(t, r.IsError)
}

func TestListAndFind(t *testing.T) {
	srv := testServer(t)
	for _, title := range []string{"Shopping", "Meeting notes", "shopping list"} {
		decodeNote(t, callTool(t, srv, "create_note", map[string]any{"title": title}))
	}

	assert.Equal(t, []int{1, 2, 3}, decodeList(t, callTool(t, srv, "list_notes", map[string]any{})))
	assert.Equal(t, []int{3, 1, 2}, decodeList(t, callTool(t, srv, "list_notes", map[string]any{
		"sort": "title", "desc": true,
	})))
	assert.Equal(t, []int{1, 3}, decodeList(t, callTool(t, srv, "find_by_title", map[string]any{"sample": "SHOP"})))
	assert.Empty(t, decodeList(t, callTool(t, srv, "find_by_title", map[string]any{"sample": ""})))

	r := callTool(t, srv, "list_notes", map[string]any{"sort": "color"})
	assert.True(t, r.IsError)
}

func TestFindByRanges(t *testing.T) {
	srv := testServer(t)
	for _, title := range []string{"a", "b", "c"} {
		decodeNote(t, callTool(t, srv, "create_note", map[string]any{"title": title}))
	}

	assert.Equal(t, []int{1, 2, 3}, decodeList(t, callTool(t, srv, "find_by_date_range", map[string]any{
		"from": "2024-06-01", "to": "2024-06-01",
	})))
	assert.Empty(t, decodeList(t, callTool(t, srv, "find_by_date_range", map[string]any{
		"from": "2024-06-03", "to": "2024-06-02", "attribute": "modified",
	})))
	assert.Equal(t, []int{2, 3}, decodeList(t, callTool(t, srv, "find_by_daytime_range", map[string]any{
		"from": "09:03", "to": "09:02:00",
	})))

	r := callTool(t, srv, "find_by_date_range", map[string]any{"from": "june", "to": "2024-06-01"})
	assert.True(t, r.IsError)
	r = callTool(t, srv, "find_by_daytime_range", map[string]any{"from": "09:00", "to": "10:00", "attribute": "deleted"})
	assert.True(t, r.IsError)
}

func TestUpdateNote(t *testing.T) {
	srv := testServer(t)
	created := decodeNote(t, callTool(t, srv, "create_note", map[string]any{"title": "draft", "body": "v1"}))

	updated := decodeNote(t, callTool(t, srv, "update_note", map[string]any{"id": 1, "body": "v2"}))
	assert.Equal(t, "draft", updated.Title)
	assert.Equal(t, "v2", updated.Body)
	assert.Equal(t, created.CreationDate, updated.CreationDate)
	assert.NotEqual(t, created.LastChangeDate, updated.LastChangeDate)

	r := callTool(t, srv, "update_note", map[string]any{"id": 9, "title": "ghost"})
	assert.True(t, r.IsError)
	assert.Equal(t, "note 9 not found", resultText(r))
}

func TestDeleteNote(t *testing.T) {
	srv := testServer(t)
	decodeNote(t, callTool(t, srv, "create_note", map[string]any{"title": "bye"}))

	removed := decodeNote(t, callTool(t, srv, "delete_note", map[string]any{"id": 1}))
	assert.Equal(t, "bye", removed.Title)

	r := callTool(t, srv, "delete_note", map[string]any{"id": 1})
	assert.True(t, r.IsError)
}

func TestNoteFormatResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, formatURI, tc.URI)
	assert.Contains(t, tc.Text, "creation_date")
}
