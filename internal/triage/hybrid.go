package triage

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	llmFailedConfidence  = 0.2
	llmInvalidConfidence = 0.3
	llmTrustThreshold    = 0.7
	llmDisagreePenalty   = 0.9
	keywordDisagreeScale = 0.8
)

// HybridClassifier combines keyword and LLM classification.
type HybridClassifier struct {
	keyword *KeywordClassifier
	llm     Classifier
	modes   ModeLister
}

// NewHybridClassifier combines keyword with llm over the given modes.
func NewHybridClassifier(keyword *KeywordClassifier, llm Classifier, ml ModeLister) *HybridClassifier {
	return &HybridClassifier{keyword: keyword, llm: llm, modes: ml}
}

// Classify implements Classifier. An LLM failure or an unknown LLM mode
// degrades to the keyword result instead of failing.
func (c *HybridClassifier) Classify(ctx context.Context, query string) (Classification, error) {
	kw, _ := c.keyword.Classify(ctx, query)

	llm, err := c.llm.Classify(ctx, query)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return Classification{}, ctx.Err()
		}
		slog.Warn("LLM triage failed, using keyword fallback", "err", err, "mode", kw.Mode)
		llm = Classification{
			Mode:       kw.Mode,
			Confidence: llmFailedConfidence,
			Reasoning:  fmt.Sprintf("LLM triage failed (%v), used keyword fallback: %s", err, kw.Mode),
			Method:     MethodLLM,
		}
	case !c.modes.Has(llm.Mode):
		slog.Warn("LLM selected unknown mode, using keyword fallback", "selected", llm.Mode, "mode", kw.Mode)
		llm = Classification{
			Mode:       kw.Mode,
			Confidence: llmInvalidConfidence,
			Reasoning:  fmt.Sprintf("LLM selected invalid mode %q, used keyword fallback: %s", llm.Mode, kw.Mode),
			Method:     MethodLLM,
		}
	}

	switch {
	case llm.Mode == kw.Mode:
		return Classification{
			Mode:       kw.Mode,
			Confidence: max(kw.Confidence, llm.Confidence),
			Reasoning:  fmt.Sprintf("Keyword and LLM agree on %s. %s", kw.Mode, llm.Reasoning),
			Method:     MethodHybrid,
		}, nil
	case llm.Confidence > llmTrustThreshold:
		return Classification{
			Mode:       llm.Mode,
			Confidence: llm.Confidence * llmDisagreePenalty,
			Reasoning:  fmt.Sprintf("LLM selected %s (high confidence), keyword suggested %s", llm.Mode, kw.Mode),
			Method:     MethodHybrid,
		}, nil
	default:
		return Classification{
			Mode:       kw.Mode,
			Confidence: kw.Confidence * keywordDisagreeScale,
			Reasoning:  fmt.Sprintf("Keyword selected %s, LLM suggested %s (low confidence)", kw.Mode, llm.Mode),
			Method:     MethodHybrid,
		}, nil
	}
}
