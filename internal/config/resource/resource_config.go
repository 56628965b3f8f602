package resource

// ResourcesConfig configures the external databases behind Layer C.
// Empty base URLs fall back to the public endpoints.
type ResourcesConfig struct {
	PubMedBase     string `json:"pubmedBase,omitempty"`
	Email          string `json:"email,omitempty"` // sent to NCBI E-utilities
	BioRxivBase    string `json:"biorxivBase,omitempty"`
	UniProtBase    string `json:"uniprotBase,omitempty"`
	KEGGBase       string `json:"keggBase,omitempty"`
	OpenTargetsURL string `json:"openTargetsUrl,omitempty"`
	WebSearchKey   string `json:"webSearchApiKey,omitempty"`
	MaxResults     int    `json:"maxResults"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

func DefaultResourcesConfig() ResourcesConfig {
	return ResourcesConfig{MaxResults: 5, TimeoutSeconds: 30}
}

// VisionConfig selects the model behind the Layer B visual describer.
type VisionConfig struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
}

func DefaultVisionConfig() VisionConfig {
	return VisionConfig{Model: "gpt-4o", MaxTokens: 2048}
}
