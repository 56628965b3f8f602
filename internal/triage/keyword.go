package triage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/bioreason/bioreason/internal/modes"
)

const noMatchConfidence = 0.1

// KeywordClassifier scores each mode by whole-word keyword matches.
type KeywordClassifier struct {
	modes       ModeLister
	defaultMode string
}

// NewKeywordClassifier creates a keyword classifier over the given modes.
// Queries without any keyword match go to defaultMode (modes.DefaultMode
// when empty).
func NewKeywordClassifier(ml ModeLister, defaultMode string) *KeywordClassifier {
	if defaultMode == "" {
		defaultMode = modes.DefaultMode
	}
	return &KeywordClassifier{modes: ml, defaultMode: defaultMode}
}

// Scores returns the keyword hit count of every mode, in mode order.
func (c *KeywordClassifier) Scores(query string) ([]string, []int) {
	text := strings.ToLower(query)
	defs := c.modes.Definitions()
	ids := make([]string, 0, len(defs))
	scores := make([]int, 0, len(defs))
	for _, def := range defs {
		score := 0
		for _, kw := range def.Keywords {
			score += countWord(text, kw)
		}
		ids = append(ids, def.ID)
		scores = append(scores, score)
	}
	return ids, scores
}

// Classify implements Classifier. It never fails.
func (c *KeywordClassifier) Classify(_ context.Context, query string) (Classification, error) {
	ids, scores := c.Scores(query)

	best, second, total := -1, 0, 0
	for i, s := range scores {
		total += s
		switch {
		case best < 0 || s > scores[best]:
			if best >= 0 {
				second = scores[best]
			}
			best = i
		case s > second:
			second = s
		}
	}

	if best < 0 || scores[best] == 0 {
		return Classification{
			Mode:       c.defaultMode,
			Confidence: noMatchConfidence,
			Reasoning:  "no mode keywords matched, using default mode " + c.defaultMode,
			Method:     MethodKeyword,
		}, nil
	}

	bestScore := scores[best]
	confidence := float64(bestScore) / float64(total)
	if bestScore > second*2 {
		confidence *= 1.5
	}
	if confidence > 1 {
		confidence = 1
	}

	return Classification{
		Mode:       ids[best],
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("%d of %d keyword matches point to %s", bestScore, total, ids[best]),
		Method:     MethodKeyword,
	}, nil
}

var (
	patternMu    sync.Mutex
	wordPatterns = map[string]*regexp.Regexp{}
)

func countWord(text, keyword string) int {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return 0
	}
	return len(wordPattern(kw).FindAllStringIndex(text, -1))
}

func wordPattern(kw string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := wordPatterns[kw]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	wordPatterns[kw] = re
	return re
}
