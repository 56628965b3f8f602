package schema

// CoordinatorSettings are the per-query model parameters of the coordinator loop.
type CoordinatorSettings struct {
	Model       string
	MaxIter     int
	Temperature float64
	MaxTokens   int
}

func NewCoordinatorSettings(model string, maxIter int, temperature float64, maxTokens int) CoordinatorSettings {
	return CoordinatorSettings{
		Model:       model,
		MaxIter:     maxIter,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}
