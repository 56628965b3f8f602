package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bioreason/bioreason/internal/schema"
)

func sampleRecord(id string, at time.Time) *Record {
	msgs := schema.NewMessages()
	msgs.AddSystem("You reason about biology.")
	msgs.AddUser([]schema.ContentBlock{
		{Type: "text", Text: "What does this micrograph show?"},
		{Type: "image_url", ImageURL: "https://example.org/cell.png"},
	})
	msgs.AddAssistant(nil, []schema.ToolCall{{ID: "c1", Name: "visual_describer", Arguments: map[string]any{"user_prompt": "describe"}}}, nil)
	msgs.AddToolResult("c1", "visual_describer", "a dividing cell")
	answer := "Mitosis."
	msgs.AddAssistant(&answer, nil, nil)
	return &Record{
		ID:         id,
		Query:      "What does this micrograph show?",
		Mode:       "mechanistic",
		State:      "DONE",
		Iterations: 2,
		Answer:     answer,
		CreatedAt:  at,
		Messages:   msgs,
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := sampleRecord("abc-123", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	if err := s.Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load("abc-123")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Mode != "mechanistic" || got.State != "DONE" || got.Iterations != 2 || got.Answer != "Mitosis." {
		t.Errorf("unexpected metadata %+v", got)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
	if got.Messages.Len() != 5 {
		t.Fatalf("expected 5 messages, got %d", got.Messages.Len())
	}

	user := got.Messages.Messages[1]
	blocks, ok := user.Content.([]schema.ContentBlock)
	if !ok || len(blocks) != 2 || blocks[1].ImageURL != "https://example.org/cell.png" {
		t.Errorf("expected multimodal user content, got %#v", user.Content)
	}
	call := got.Messages.Messages[2]
	if len(call.ToolCalls) != 1 || call.ToolCalls[0].Name != "visual_describer" || call.ToolCalls[0].Arguments["user_prompt"] != "describe" {
		t.Errorf("unexpected tool calls %+v", call.ToolCalls)
	}
	tool := got.Messages.Messages[3]
	if tool.ToolCallID != "c1" || tool.ToolName != "visual_describer" || tool.Text() != "a dividing cell" {
		t.Errorf("unexpected tool message %+v", tool)
	}
	if last, _ := got.Messages.Last(); last.Text() != "Mitosis." {
		t.Errorf("unexpected final message %q", last.Text())
	}
}

func TestSave_AssignsID(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := &Record{Query: "q", Messages: schema.NewMessages()}
	if err := s.Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be assigned, got %+v", rec)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), rec.ID+".jsonl")); err != nil {
		t.Errorf("expected transcript file: %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []struct {
		id     string
		offset time.Duration
	}{{"old", 0}, {"newest", 2 * time.Hour}, {"middle", time.Hour}} {
		if err := s.Save(sampleRecord(r.id, base.Add(r.offset))); err != nil {
			t.Fatalf("save %s: %v", r.id, err)
		}
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "broken.jsonl"), []byte("not json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(list))
	}
	want := []string{"newest", "middle", "old"}
	for i, sum := range list {
		if sum.ID != want[i] {
			t.Errorf("list[%d] = %s, want %s", i, sum.ID, want[i])
		}
	}
}

func TestLoad_NotFound(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
