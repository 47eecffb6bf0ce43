package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mannaz/internal/service"
	"github.com/starford/mannaz/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	dbFile, err := os.CreateTemp("", "mannaz-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(service.NewNotes(db), service.NewTags(db))
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content = %d items, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestCreateAndReadNote(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	res, err := s.createNote(ctx, callRequest(map[string]any{
		"title":   "Meeting notes",
		"content": "agenda",
		"tags":    "work, planning",
	}))
	if err != nil {
		t.Fatalf("createNote: %v", err)
	}
	if res.IsError {
		t.Fatalf("createNote error: %s", textOf(t, res))
	}
	if got := textOf(t, res); got != "created note 1" {
		t.Errorf("createNote text = %q", got)
	}

	res, err = s.readNote(ctx, callRequest(map[string]any{"id": float64(1)}))
	if err != nil {
		t.Fatalf("readNote: %v", err)
	}
	text := textOf(t, res)
	for _, want := range []string{"Meeting notes", "agenda", "work", "planning"} {
		if !strings.Contains(text, want) {
			t.Errorf("readNote output missing %q:\n%s", want, text)
		}
	}
}

func TestCreateNoteRequiresTitle(t *testing.T) {
	s := testServer(t)

	res, err := s.createNote(context.Background(), callRequest(map[string]any{"content": "x"}))
	if err != nil {
		t.Fatalf("createNote: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing title")
	}
}

func TestSearchNotes(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	s.createNote(ctx, callRequest(map[string]any{"title": "Go concurrency"}))
	s.createNote(ctx, callRequest(map[string]any{"title": "Grocery list"}))

	res, err := s.searchNotes(ctx, callRequest(map[string]any{"query": "concurrency"}))
	if err != nil {
		t.Fatalf("searchNotes: %v", err)
	}
	text := textOf(t, res)
	if !strings.Contains(text, "Go concurrency") || strings.Contains(text, "Grocery") {
		t.Errorf("searchNotes output:\n%s", text)
	}
}

func TestReadNoteUnknownID(t *testing.T) {
	s := testServer(t)

	res, err := s.readNote(context.Background(), callRequest(map[string]any{"id": float64(99)}))
	if err != nil {
		t.Fatalf("readNote: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for unknown id")
	}
}

func TestGetBacklinks(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	s.createNote(ctx, callRequest(map[string]any{"title": "Hub", "content": "see [[Target]]"}))
	s.createNote(ctx, callRequest(map[string]any{"title": "Target"}))

	res, err := s.getBacklinks(ctx, callRequest(map[string]any{"id": float64(2)}))
	if err != nil {
		t.Fatalf("getBacklinks: %v", err)
	}
	if got := textOf(t, res); !strings.Contains(got, "Hub") {
		t.Errorf("getBacklinks output = %q", got)
	}

	res, err = s.getBacklinks(ctx, callRequest(map[string]any{"id": float64(1)}))
	if err != nil {
		t.Fatalf("getBacklinks: %v", err)
	}
	if got := textOf(t, res); got != "no backlinks found" {
		t.Errorf("getBacklinks output = %q", got)
	}
}

func TestListTags(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	s.createNote(ctx, callRequest(map[string]any{"title": "a", "tags": "go,sql"}))
	s.createNote(ctx, callRequest(map[string]any{"title": "b", "tags": "go"}))

	res, err := s.listTags(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("listTags: %v", err)
	}
	text := textOf(t, res)
	if !strings.Contains(text, "go") || !strings.Contains(text, "sql") {
		t.Errorf("listTags output:\n%s", text)
	}
}
