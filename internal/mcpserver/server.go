// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes donno listing and search tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/starford/donno/internal/models"
	"github.com/starford/donno/internal/noteservice"
)

const (
	formatURI        = "donno://note-format"
	defaultListLimit = 5
)

// Server wraps the MCP server with donno tools.
type Server struct {
	mcp             *server.MCPServer
	svc             *noteservice.Service
	defaultNotebook string
}

// New creates a new MCP server with all donno tools registered.
// defaultNotebook is used by create_note when no notebook is given.
func New(svc *noteservice.Service, defaultNotebook string) *Server {
	s := &Server{svc: svc, defaultNotebook: defaultNotebook}

	s.mcp = server.NewMCPServer(
		"donno",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the most recently updated notes. Each note gets an index "+
			"that read_note accepts until the next list_notes or search_notes call."),
		mcp.WithNumber("limit", mcp.Description("Number of notes to list (default 5, 0 for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes. The query holds whitespace separated patterns that "+
			"must all match. Read the search syntax in the donno://note-format resource."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Patterns, e.g. `powershell ta:ps1:w cr:2021:B`")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note by its index in the last list_notes or search_notes result."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("1-based index")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_notebooks",
		mcp.WithDescription("List notebooks in use with their note counts."),
	), s.listNotebooks)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. Created and Updated are set to now."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Single-line title")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("notebook", mcp.Description("Notebook path such as /Tech/Public")),
		mcp.WithString("body", mcp.Description("Note body")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns the donno note file format and search syntax."),
	), s.getNoteFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format",
			mcp.WithResourceDescription("donno note file format and search syntax."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type noteItem struct {
	Index    int      `json:"index"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Notebook string   `json:"notebook"`
	Updated  string   `json:"updated"`
}

type noteDetail struct {
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Notebook string   `json:"notebook"`
	Created  string   `json:"created"`
	Updated  string   `json:"updated"`
	Path     string   `json:"path"`
	Body     string   `json:"body"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func listingResult(res *noteservice.Result) (*mcp.CallToolResult, error) {
	if len(res.Notes) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	return jsonResult(lo.Map(res.Notes, func(n models.Note, i int) noteItem {
		return noteItem{
			Index:    i + 1,
			Title:    n.Title,
			Tags:     n.Tags,
			Notebook: n.Notebook,
			Updated:  models.FormatTime(n.Updated),
		}
	}))
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultListLimit)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}
	res, err := s.svc.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return listingResult(res)
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	patterns := strings.Fields(query)
	if len(patterns) == 0 {
		return mcp.NewToolResultError("query is empty"), nil
	}
	res, err := s.svc.Search(ctx, patterns)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return listingResult(res)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ordinal, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ordinal < 1 {
		return mcp.NewToolResultError("index must be at least 1"), nil
	}
	n, err := s.svc.Resolve(ctx, ordinal)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(noteDetail{
		Title:    n.Title,
		Tags:     n.Tags,
		Notebook: n.Notebook,
		Created:  models.FormatTime(n.Created),
		Updated:  models.FormatTime(n.Updated),
		Path:     n.Path,
		Body:     n.Body,
	})
}

func (s *Server) listNotebooks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nbs, err := s.svc.Notebooks(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(nbs)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := lo.Filter(
		lo.Map(strings.Split(req.GetString("tags", ""), ","), func(t string, _ int) string {
			return strings.TrimSpace(t)
		}),
		func(t string, _ int) bool { return t != "" },
	)
	draft := models.Note{
		Title:    title,
		Tags:     tags,
		Notebook: req.GetString("notebook", s.defaultNotebook),
		Body:     req.GetString("body", ""),
	}
	path, err := s.svc.Create(ctx, draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) getNoteFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormat), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}
