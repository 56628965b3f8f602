package layers

import (
	"time"

	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/tools"
)

// ResourceSettings configure the Layer C tools.
type ResourceSettings struct {
	PubMedBase      string
	NCBIEmail       string
	BioRxivBase     string
	UniProtBase     string
	KEGGBase        string
	OpenTargetsURL  string
	WebSearchAPIKey string
	MaxResults      int
	Timeout         time.Duration
}

// NewLayerA builds the parametric-memory layer.
func NewLayerA(provider schema.LLMProvider, opts schema.ChatOptions) (*RegistryAdapter, error) {
	reg, err := tools.NewRegistryBuilder(schema.LayerA).
		WithTool(tools.NewParametricMemoryTool(provider, "", opts)).
		Build()
	if err != nil {
		return nil, err
	}
	return NewRegistryAdapter(schema.LayerA, reg)
}

// NewLayerB builds the specialised-model layer. opts should name a vision model.
func NewLayerB(provider schema.LLMProvider, opts schema.ChatOptions) (*RegistryAdapter, error) {
	reg, err := tools.NewRegistryBuilder(schema.LayerB).
		WithTool(tools.NewVisualDescriberTool(provider, opts)).
		Build()
	if err != nil {
		return nil, err
	}
	return NewRegistryAdapter(schema.LayerB, reg)
}

// NewLayerC builds the external-resource layer.
func NewLayerC(s ResourceSettings) (*RegistryAdapter, error) {
	client := tools.NewResourceClient(s.Timeout)
	pubmed := tools.NewPubMedTool(client, s.PubMedBase, s.NCBIEmail, s.MaxResults)
	biorxiv := tools.NewBioRxivTool(client, s.BioRxivBase, s.MaxResults)

	reg, err := tools.NewRegistryBuilder(schema.LayerC).
		WithTool(tools.NewLiteratureTool(pubmed, biorxiv, s.MaxResults)).
		WithTool(pubmed).
		WithTool(biorxiv).
		WithTool(tools.NewUniProtTool(client, s.UniProtBase, s.MaxResults)).
		WithTool(tools.NewKEGGTool(client, s.KEGGBase, 0)).
		WithTool(tools.NewOpenTargetsTool(client, s.OpenTargetsURL, s.MaxResults)).
		WithTool(tools.NewWebSearchTool(client, s.WebSearchAPIKey, "", s.MaxResults)).
		WithTool(tools.NewWebFetchTool(0, s.Timeout)).
		Build()
	if err != nil {
		return nil, err
	}
	return NewRegistryAdapter(schema.LayerC, reg)
}
