// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note repository as tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/zametka/internal/apperr"
	"github.com/starford/zametka/internal/models"
	"github.com/starford/zametka/internal/noteservice"
	"github.com/starford/zametka/internal/query"
)

const (
	serverName      = "Zametka"
	serverVersion   = "1.0.0"
	formatURI       = "zametka://note-format"
	toolTimeLayout  = "2006-01-02T15:04:05.000000Z07:00"
	argDateLayout   = "2006-01-02"
	argClockLayout  = "15:04"
	attributeHint   = "Timestamp to compare: created (default) or modified"
	defaultAttrName = "created"
)

// Server wraps the MCP server with note tools. The note store assumes a
// single caller, so tool calls are serialized.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
	mu  sync.Mutex
}

// noteDTO is the JSON shape returned by the tools.
type noteDTO struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	CreationDate   string `json:"creation_date"`
	LastChangeDate string `json:"last_change_date"`
}

type listDTO struct {
	Notes []noteDTO `json:"notes"`
	Total int       `json:"total"`
}

func toDTO(n models.Note) noteDTO {
	return noteDTO{
		ID:             n.ID,
		Title:          n.Title,
		Body:           n.Body,
		CreationDate:   n.CreationDate.Format(toolTimeLayout),
		LastChangeDate: n.LastChangeDate.Format(toolTimeLayout),
	}
}

// New creates a new MCP server with all note tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. The store assigns its ID and timestamps."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("body", mcp.Description("Note text, may span several lines")),
	), s.serialized(s.createNote))

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read one note by its number."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note ID (positive integer)")),
	), s.serialized(s.getNote))

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every readable note."),
		mcp.WithString("sort", mcp.Description("Sort key: id (default), created, modified or title"),
			mcp.Enum("id", "created", "modified", "title")),
		mcp.WithBoolean("desc", mcp.Description("Sort in descending order")),
	), s.serialized(s.listNotes))

	s.mcp.AddTool(mcp.NewTool("find_by_title",
		mcp.WithDescription("Find notes whose title contains the sample, ignoring case."),
		mcp.WithString("sample", mcp.Required(), mcp.Description("Substring to look for")),
	), s.serialized(s.findByTitle))

	s.mcp.AddTool(mcp.NewTool("find_by_date_range",
		mcp.WithDescription("Find notes whose date falls within an inclusive range of calendar days."),
		mcp.WithString("from", mcp.Required(), mcp.Description("First day, YYYY-MM-DD")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Last day, YYYY-MM-DD")),
		mcp.WithString("attribute", mcp.Description(attributeHint), mcp.Enum("created", "modified")),
	), s.serialized(s.findByDateRange))

	s.mcp.AddTool(mcp.NewTool("find_by_daytime_range",
		mcp.WithDescription("Find notes whose time of day falls within an inclusive range, on any day."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Start time, HH:MM or HH:MM:SS")),
		mcp.WithString("to", mcp.Required(), mcp.Description("End time, HH:MM or HH:MM:SS")),
		mcp.WithString("attribute", mcp.Description(attributeHint), mcp.Enum("created", "modified")),
	), s.serialized(s.findByDaytimeRange))

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Change the title and/or body of a note. Omitted fields keep their value."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note ID")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("body", mcp.Description("New body")),
	), s.serialized(s.updateNote))

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note and return its last content."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note ID")),
	), s.serialized(s.deleteNote))

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format",
			mcp.WithResourceDescription("How notes are stored and how tool arguments are written."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// Serve runs the stdio transport over in and out until ctx is done or in
// is closed. Transport errors are logged to logger.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) serialized(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return h(ctx, req)
	}
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.CreateNote(ctx, title, req.GetString("body", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(toDTO(n))
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.GetNote(ctx, id)
	if err != nil {
		return noteError(id, err), nil
	}
	return jsonResult(toDTO(n))
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := query.ParseSortKey(req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.AllNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query.Sort(notes, key, req.GetBool("desc", false))
	return listResult(notes)
}

func (s *Server) findByTitle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sample, err := req.RequireString("sample")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.NotesByTitle(ctx, sample)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query.Sort(notes, query.SortByID, false)
	return listResult(notes)
}

func (s *Server) findByDateRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, to, attr, err := rangeArgs(req, parseDate)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.NotesByDateRange(ctx, from, to, attr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query.Sort(notes, query.SortByID, false)
	return listResult(notes)
}

func (s *Server) findByDaytimeRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, to, attr, err := rangeArgs(req, parseClock)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.NotesByDaytimeRange(ctx, from, to, attr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query.Sort(notes, query.SortByID, false)
	return listResult(notes)
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	current, err := s.svc.GetNote(ctx, id)
	if err != nil {
		return noteError(id, err), nil
	}
	n, err := s.svc.EditNote(ctx, id,
		req.GetString("title", current.Title),
		req.GetString("body", current.Body))
	if err != nil {
		return noteError(id, err), nil
	}
	return jsonResult(toDTO(n))
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.DeleteNote(ctx, id)
	if err != nil {
		return noteError(id, err), nil
	}
	return jsonResult(toDTO(n))
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func rangeArgs(req mcp.CallToolRequest, parse func(string) (time.Time, error)) (time.Time, time.Time, models.DateAttribute, error) {
	var zero time.Time
	rawFrom, err := req.RequireString("from")
	if err != nil {
		return zero, zero, 0, err
	}
	rawTo, err := req.RequireString("to")
	if err != nil {
		return zero, zero, 0, err
	}
	from, err := parse(rawFrom)
	if err != nil {
		return zero, zero, 0, fmt.Errorf("invalid from %q: %w", rawFrom, err)
	}
	to, err := parse(rawTo)
	if err != nil {
		return zero, zero, 0, fmt.Errorf("invalid to %q: %w", rawTo, err)
	}
	attr, err := models.ParseDateAttribute(req.GetString("attribute", defaultAttrName))
	if err != nil {
		return zero, zero, 0, err
	}
	return from, to, attr, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(argDateLayout, s, time.Local)
}

func parseClock(s string) (time.Time, error) {
	t, err := time.ParseInLocation(argClockLayout, s, time.Local)
	if err != nil {
		return time.ParseInLocation(time.TimeOnly, s, time.Local)
	}
	return t, nil
}

func noteError(id int, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("note %d not found", id))
	case errors.Is(err, apperr.ErrInvalidID):
		return mcp.NewToolResultError(fmt.Sprintf("invalid note id %d", id))
	}
	return mcp.NewToolResultError(err.Error())
}

func listResult(notes []models.Note) (*mcp.CallToolResult, error) {
	out := listDTO{Notes: make([]noteDTO, 0, len(notes)), Total: len(notes)}
	for _, n := range notes {
		out.Notes = append(out.Notes, toDTO(n))
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
