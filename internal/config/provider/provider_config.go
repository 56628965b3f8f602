package provider

const (
	ProviderCustom      = "custom"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderOpenRouter  = "openrouter"
	ProviderDeepSeek    = "deepseek"
	ProviderGroq        = "groq"
	ProviderDashScope   = "dashscope"
	ProviderVLLM        = "vllm"
	ProviderGemini      = "gemini"
	ProviderMoonshot    = "moonshot"
	ProviderAiHubMix    = "aihubmix"
	ProviderSiliconFlow = "siliconflow"
)

// ProviderConfig holds credentials for one model provider.
type ProviderConfig struct {
	APIKey       string            `json:"apiKey"`
	APIBase      string            `json:"apiBase,omitempty"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty"`
}

// ProvidersConfig holds credentials for every supported provider.
type ProvidersConfig struct {
	Custom      ProviderConfig `json:"custom"`
	OpenAI      ProviderConfig `json:"openai"`
	Anthropic   ProviderConfig `json:"anthropic"`
	OpenRouter  ProviderConfig `json:"openrouter"`
	DeepSeek    ProviderConfig `json:"deepseek"`
	Groq        ProviderConfig `json:"groq"`
	DashScope   ProviderConfig `json:"dashscope"`
	VLLM        ProviderConfig `json:"vllm"`
	Gemini      ProviderConfig `json:"gemini"`
	Moonshot    ProviderConfig `json:"moonshot"`
	AiHubMix    ProviderConfig `json:"aihubmix"`
	SiliconFlow ProviderConfig `json:"siliconflow"`
}

func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{}
}

// ByName returns a pointer to the ProviderConfig field matching the given
// registry name. Returns nil if the name is unknown.
func (p *ProvidersConfig) ByName(name string) *ProviderConfig {
	switch name {
	case ProviderCustom:
		return &p.Custom
	case ProviderOpenAI:
		return &p.OpenAI
	case ProviderAnthropic:
		return &p.Anthropic
	case ProviderOpenRouter:
		return &p.OpenRouter
	case ProviderDeepSeek:
		return &p.DeepSeek
	case ProviderGroq:
		return &p.Groq
	case ProviderDashScope:
		return &p.DashScope
	case ProviderVLLM:
		return &p.VLLM
	case ProviderGemini:
		return &p.Gemini
	case ProviderMoonshot:
		return &p.Moonshot
	case ProviderAiHubMix:
		return &p.AiHubMix
	case ProviderSiliconFlow:
		return &p.SiliconFlow
	}
	return nil
}
