package triage

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownMethod is returned by New for a method it does not know.
var ErrUnknownMethod = errors.New("unknown classifier method")

// Fixed always selects the same mode. It lets callers treat an explicit
// mode choice and a classifier uniformly.
type Fixed string

// Classify implements Classifier.
func (f Fixed) Classify(context.Context, string) (Classification, error) {
	return Classification{Mode: string(f), Confidence: 1, Reasoning: "mode selected explicitly", Method: "explicit"}, nil
}

// New returns the classifier named by method: keyword (also the empty
// method), llm or hybrid.
func New(method string, keyword *KeywordClassifier, llm *LLMClassifier, ml ModeLister) (Classifier, error) {
	switch method {
	case "", MethodKeyword:
		return keyword, nil
	case MethodLLM:
		return llm, nil
	case MethodHybrid:
		return NewHybridClassifier(keyword, llm, ml), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMethod, method)
	}
}
