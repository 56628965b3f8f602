package coordinator

// Classifier methods accepted in CoordinatorConfig.Classifier.
const (
	ClassifierKeyword = "keyword"
	ClassifierLLM     = "llm"
	ClassifierHybrid  = "hybrid"
)

type CoordinatorConfig struct {
	Workspace   string  `json:"workspace"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
	MaxIter     int     `json:"maxIterations"`
	// SystemPrompt replaces the built-in prompt for modes that carry none.
	SystemPrompt string `json:"systemPrompt,omitempty"`
	Classifier   string `json:"classifier"`
}

func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Workspace:   "~/.bioreason/workspace",
		Model:       "gpt-4o-mini",
		MaxTokens:   4096,
		Temperature: 0.3,
		MaxIter:     10,
		Classifier:  ClassifierHybrid,
	}
}
