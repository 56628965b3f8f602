package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bioreason/bioreason/internal/schema"
)

// ErrNotFound is returned by Load for an unknown record id.
var ErrNotFound = errors.New("transcript not found")

var reSafeID = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Store reads and writes transcript files under one directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at workspace/transcripts, creating the
// directory if necessary.
func NewStore(workspace string) (*Store, error) {
	dir := filepath.Join(workspace, "transcripts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcripts dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// NewID returns a fresh record id.
func NewID() string { return uuid.NewString() }

// Dir returns the directory holding transcript files.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, reSafeID.ReplaceAllString(id, "_")+".jsonl")
}

// Save writes rec, replacing any earlier file with the same id. A record
// without an id is assigned one.
func (s *Store) Save(rec *Record) error {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	meta := metadataLine{
		Type: "metadata",
		Summary: Summary{
			ID:         rec.ID,
			Query:      rec.Query,
			Mode:       rec.Mode,
			State:      rec.State,
			Iterations: rec.Iterations,
			Error:      rec.Error,
			CreatedAt:  rec.CreatedAt.UTC(),
		},
		Answer: rec.Answer,
	}
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	for _, msg := range rec.Messages.Messages {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
	}

	path := s.path(rec.ID)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", path, err)
	}
	slog.Debug("Transcript saved", "id", rec.ID, "path", path, "messages", rec.Messages.Len())
	return nil
}

// wireMessage mirrors schema.Message with a raw content field so string and
// block contents can be told apart on load.
type wireMessage struct {
	schema.Message
	Content json.RawMessage `json:"content,omitempty"`
}

// Load reads the record called id.
func (s *Store) Load(id string) (*Record, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("transcript %s: empty file", id)
	}
	var meta metadataLine
	if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil || meta.Type != "metadata" {
		return nil, fmt.Errorf("transcript %s: missing metadata line", id)
	}

	rec := &Record{
		ID:         meta.ID,
		Query:      meta.Query,
		Mode:       meta.Mode,
		State:      meta.State,
		Iterations: meta.Iterations,
		Answer:     meta.Answer,
		Error:      meta.Error,
		CreatedAt:  meta.CreatedAt,
		Messages:   schema.NewMessages(),
	}
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var w wireMessage
		if err := json.Unmarshal(line, &w); err != nil {
			slog.Warn("Skipping malformed transcript line", "id", id, "err", err)
			continue
		}
		msg := w.Message
		msg.Content = decodeContent(w.Content)
		rec.Messages.Messages = append(rec.Messages.Messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", id, err)
	}
	return rec, nil
}

func decodeContent(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var blocks []schema.ContentBlock
	if json.Unmarshal(raw, &blocks) == nil {
		return blocks
	}
	return string(raw)
}

// List returns the summaries of all stored records, newest first.
func (s *Store) List() ([]Summary, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(paths))
	for _, path := range paths {
		sum, err := readSummary(path)
		if err != nil {
			continue
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func readSummary(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		return Summary{}, errors.New("empty file")
	}
	var meta metadataLine
	if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil || meta.Type != "metadata" {
		return Summary{}, errors.New("missing metadata line")
	}
	if meta.ID == "" {
		meta.ID = strings.TrimSuffix(filepath.Base(path), ".jsonl")
	}
	meta.Summary.Path = path
	return meta.Summary, nil
}
