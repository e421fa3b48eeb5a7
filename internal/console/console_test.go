package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/zametka/internal/noteservice"
	"github.com/starford/zametka/internal/testutil"
)

func session(t *testing.T, svc *noteservice.Service, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	c := New(svc, in, &out, testutil.Logger())
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func testService(t *testing.T) *noteservice.Service {
	t.Helper()
	store, _ := testutil.TestStore(t)
	tick := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	return noteservice.NewService(store, noteservice.WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))
}

func TestConsole_CreateAndSearch(t *testing.T) {
	svc := testService(t)
	out := session(t, svc,
		"1", "Shopping", "milk", "bread", ".",
		"1", "Meeting notes", ".",
		"1", "shopping list", "eggs", ".",
		"3", "SHOP",
		"q",
	)

	assert.Contains(t, out, "Saved as note 1.")
	assert.Contains(t, out, "Saved as note 3.")
	assert.Contains(t, out, "Found: 2")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), msgBye))

	n, err := svc.GetNote(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "milk\nbread", n.Body)
}

func TestConsole_InvalidInputIsAskedAgain(t *testing.T) {
	svc := testService(t)
	out := session(t, svc,
		"42",
		"1", "", "Title", ".",
		"6", "abc", "1",
		"0",
	)
	assert.Contains(t, out, menuWrongKey)
	assert.Contains(t, out, wrongTitle)
	assert.Contains(t, out, "Expected a number from 1 to")
	assert.Contains(t, out, "Note 1 : Title")
}

func TestConsole_ShowAllEmpty(t *testing.T) {
	out := session(t, testService(t), "2", "", "q")
	assert.Contains(t, out, msgNothingFound)
}

func TestConsole_ShowAllSorted(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	for _, title := range []string{"b", "c", "a"} {
		_, err := svc.CreateNote(ctx, title, "")
		require.NoError(t, err)
	}
	out := session(t, svc, "2", "-t", "q")
	ic := strings.Index(out, "Note 2 : c")
	ib := strings.Index(out, "Note 1 : b")
	ia := strings.Index(out, "Note 3 : a")
	require.True(t, ic >= 0 && ib >= 0 && ia >= 0)
	assert.Less(t, ic, ib)
	assert.Less(t, ib, ia)
	assert.Contains(t, out, "Found: 3")
}

func TestConsole_Ranges(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.CreateNote(ctx, title, "")
		require.NoError(t, err)
	}
	out := session(t, svc,
		"5", "c", "09:03", "09:02",
		"4", "m", "2024-06-02", "2024-06-03",
		"q",
	)
	assert.Contains(t, out, "Found: 2")
	assert.NotContains(t, out, "Note 1 : first")
	assert.Contains(t, out, msgNothingFound)
}

func TestConsole_EditKeepsTitle(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	n, err := svc.CreateNote(ctx, "draft", "v1")
	require.NoError(t, err)

	out := session(t, svc, "7", "1", "", "y", "v2", ".", "q")
	assert.Contains(t, out, "Note 1 updated.")

	got, err := svc.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Title)
	assert.Equal(t, "v2", got.Body)
	assert.True(t, got.LastChangeDate.After(n.LastChangeDate))
}

func TestConsole_EditWithoutChanges(t *testing.T) {
	svc := testService(t)
	_, err := svc.CreateNote(context.Background(), "same", "")
	require.NoError(t, err)
	out := session(t, svc, "7", "1", "", "n", "q")
	assert.Contains(t, out, msgKept)
}

func TestConsole_Delete(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	_, err := svc.CreateNote(ctx, "bye", "")
	require.NoError(t, err)

	out := session(t, svc, "8", "1", "n", "8", "1", "y", "8", "1", "q")
	assert.Contains(t, out, "Note 1 deleted.")
	assert.Contains(t, out, "Note 1 not found.")

	all, err := svc.AllNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConsole_EOFEndsSession(t *testing.T) {
	var out bytes.Buffer
	c := New(testService(t), strings.NewReader("1\nhalf a note"), &out, testutil.Logger())
	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), msgBye)
}

func TestConsole_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	c := New(testService(t), strings.NewReader("q\n"), &out, testutil.Logger())
	require.NoError(t, c.Run(ctx))
	assert.Empty(t, out.String())
}
