// Package triage selects a reasoning mode for a query.
package triage

import (
	"context"

	"github.com/bioreason/bioreason/internal/modes"
)

// Classification methods.
const (
	MethodKeyword = "keyword"
	MethodLLM     = "llm"
	MethodHybrid  = "hybrid"
)

// Classification is the outcome of classifying one query.
type Classification struct {
	Mode       string  `json:"mode"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Method     string  `json:"method"`
}

// Classifier maps a query to a reasoning mode identifier.
type Classifier interface {
	Classify(ctx context.Context, query string) (Classification, error)
}

// ModeLister is the view of the mode registry classifiers need.
type ModeLister interface {
	Definitions() []modes.Definition
	Has(id string) bool
}
