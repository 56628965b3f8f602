// Package session persists query transcripts as JSONL files.
//
// File format:
//
//	Line 1:  {"_type":"metadata","id":"…","query":"…","mode":"…","state":"…",
//	           "iterations":N,"created_at":"…","error":"…"}
//	Line 2+: one JSON message object per line
package session

import (
	"time"

	"github.com/bioreason/bioreason/internal/schema"
)

// Record is one persisted query.
type Record struct {
	ID         string
	Query      string
	Mode       string
	State      string
	Iterations int
	Answer     string
	Error      string
	CreatedAt  time.Time
	Messages   schema.Messages
}

// Summary is the metadata line of a stored record.
type Summary struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	Mode       string    `json:"mode"`
	State      string    `json:"state"`
	Iterations int       `json:"iterations"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Path       string    `json:"-"`
}

type metadataLine struct {
	Type string `json:"_type"`
	Summary
	Answer string `json:"answer,omitempty"`
}
