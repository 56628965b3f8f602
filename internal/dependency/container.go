// Package dependency wires the bioreason services using go.uber.org/dig.
package dependency

import (
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/dig"

	"github.com/bioreason/bioreason/internal/config"
	"github.com/bioreason/bioreason/internal/coordinator"
	"github.com/bioreason/bioreason/internal/layers"
	"github.com/bioreason/bioreason/internal/modes"
	"github.com/bioreason/bioreason/internal/providers"
	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/session"
	"github.com/bioreason/bioreason/internal/triage"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg         *config.Config
	provider    schema.LLMProvider
	modes       *modes.Registry
	layers      layers.Set
	keyword     *triage.KeywordClassifier
	llm         *triage.LLMClassifier
	store       *session.Store
	coordinator *coordinator.Coordinator
}

func (c *Container) Config() *config.Config                { return c.cfg }
func (c *Container) Provider() schema.LLMProvider          { return c.provider }
func (c *Container) Modes() *modes.Registry                { return c.modes }
func (c *Container) Layers() layers.Set                    { return c.layers }
func (c *Container) Store() *session.Store                 { return c.store }
func (c *Container) Coordinator() *coordinator.Coordinator { return c.coordinator }

// Classifier returns the classifier named by method, falling back to the
// configured one when method is empty.
func (c *Container) Classifier(method string) (triage.Classifier, error) {
	if method == "" {
		method = c.cfg.Coordinator.Classifier
	}
	return triage.New(method, c.keyword, c.llm, c.modes)
}

// LLMModel is a named string type so dig can distinguish the coordinator
// model from other strings.
type LLMModel string

// VisionProvider is the model-completion client behind Layer B.
type VisionProvider struct{ schema.LLMProvider }

// Layer adapters, one named type per tier so dig can tell them apart.
type (
	LayerA struct{ *layers.RegistryAdapter }
	LayerB struct{ *layers.RegistryAdapter }
	LayerC struct{ *layers.RegistryAdapter }
)

// Options tune construction for one CLI invocation.
type Options struct {
	// OnProgress receives interim model text and tool hints.
	OnProgress func(string)
	// NoStore disables transcript persistence.
	NoStore bool
	// Offline skips the API key check for commands that never call the model.
	Offline bool
}

// New builds and wires all services from cfg.
func New(cfg *config.Config, opts Options) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() Options { return opts }); err != nil {
		return nil, err
	}
	for _, ctor := range []any{
		newProvider,
		resolveLLMModel,
		newVisionProvider,
		newModeRegistry,
		newLayerA,
		newLayerB,
		newLayerC,
		newLayerSet,
		newKeywordClassifier,
		newLLMClassifier,
		newTranscriptStore,
		newCoordinator,
	} {
		if err := d.Provide(ctor); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.LLMProvider,
		registry *modes.Registry,
		set layers.Set,
		kw *triage.KeywordClassifier,
		llm *triage.LLMClassifier,
		store *session.Store,
		coord *coordinator.Coordinator,
	) {
		result = &Container{
			cfg:         cfg,
			provider:    provider,
			modes:       registry,
			layers:      set,
			keyword:     kw,
			llm:         llm,
			store:       store,
			coordinator: coord,
		}
	})
	return result, err
}

func newProvider(cfg *config.Config, opts Options) (schema.LLMProvider, error) {
	model := cfg.Coordinator.Model
	if !opts.Offline && cfg.MatchProvider(model).Provider == nil {
		return nil, fmt.Errorf("no API key configured for model %q: edit %s or set %s", model, config.ConfigPath(), config.EnvAPIKey)
	}
	params := cfg.ProviderParams(model)
	params.Timeout = 2 * time.Minute
	return providers.New(params), nil
}

func resolveLLMModel(cfg *config.Config, p schema.LLMProvider) LLMModel {
	m := cfg.Coordinator.Model
	if m == "" {
		m = p.DefaultModel()
	}
	return LLMModel(m)
}

// newVisionProvider reuses the coordinator provider when the vision model is
// served by the same backend.
func newVisionProvider(cfg *config.Config, p schema.LLMProvider) VisionProvider {
	vm := cfg.Vision.Model
	if vm == "" || cfg.MatchProvider(vm).Name == cfg.MatchProvider(cfg.Coordinator.Model).Name {
		return VisionProvider{p}
	}
	params := cfg.ProviderParams(vm)
	params.Timeout = 2 * time.Minute
	return VisionProvider{providers.New(params)}
}

func newModeRegistry(cfg *config.Config) (*modes.Registry, error) {
	r := modes.NewRegistry()
	if err := modes.DefineBuiltin(r); err != nil {
		return nil, fmt.Errorf("define built-in modes: %w", err)
	}
	if path := cfg.CatalogPath(); path != "" {
		n, err := modes.LoadCatalog(r, path)
		if err != nil {
			return nil, err
		}
		slog.Debug("Mode catalog loaded", "path", path, "modes", n)
	}
	return r, nil
}

func newLayerA(cfg *config.Config, p schema.LLMProvider, m LLMModel) (LayerA, error) {
	a, err := layers.NewLayerA(p, schema.NewChatOptions(string(m), cfg.Coordinator.MaxTokens, cfg.Coordinator.Temperature))
	return LayerA{a}, err
}

func newLayerB(cfg *config.Config, vp VisionProvider) (LayerB, error) {
	a, err := layers.NewLayerB(vp.LLMProvider, schema.NewChatOptions(cfg.Vision.Model, cfg.Vision.MaxTokens, 0.2))
	return LayerB{a}, err
}

func newLayerC(cfg *config.Config) (LayerC, error) {
	r := cfg.Resources
	a, err := layers.NewLayerC(layers.ResourceSettings{
		PubMedBase:      r.PubMedBase,
		NCBIEmail:       r.Email,
		BioRxivBase:     r.BioRxivBase,
		UniProtBase:     r.UniProtBase,
		KEGGBase:        r.KEGGBase,
		OpenTargetsURL:  r.OpenTargetsURL,
		WebSearchAPIKey: r.WebSearchKey,
		MaxResults:      r.MaxResults,
		Timeout:         time.Duration(r.TimeoutSeconds) * time.Second,
	})
	return LayerC{a}, err
}

// newLayerSet restricts each layer to the tools every mode declares, so
// ToolsForMode reflects the mode catalog.
func newLayerSet(a LayerA, b LayerB, c LayerC, registry *modes.Registry) (layers.Set, error) {
	for _, def := range registry.Definitions() {
		a.Restrict(def.ID, def.Tools.A...)
		b.Restrict(def.ID, def.Tools.B...)
		c.Restrict(def.ID, def.Tools.C...)
	}
	return layers.NewSet(a.RegistryAdapter, b.RegistryAdapter, c.RegistryAdapter)
}

func newKeywordClassifier(registry *modes.Registry) *triage.KeywordClassifier {
	return triage.NewKeywordClassifier(registry, modes.DefaultMode)
}

func newLLMClassifier(p schema.LLMProvider, registry *modes.Registry, m LLMModel) *triage.LLMClassifier {
	return triage.NewLLMClassifier(p, registry, string(m))
}

func newTranscriptStore(cfg *config.Config) (*session.Store, error) {
	return session.NewStore(cfg.WorkspacePath())
}

func newCoordinator(
	cfg *config.Config,
	opts Options,
	p schema.LLMProvider,
	m LLMModel,
	registry *modes.Registry,
	set layers.Set,
	store *session.Store,
) *coordinator.Coordinator {
	c := cfg.Coordinator
	coordOpts := []coordinator.Option{
		coordinator.WithSystemPrompt(c.SystemPrompt),
		coordinator.WithProgress(opts.OnProgress),
	}
	if !opts.NoStore {
		coordOpts = append(coordOpts, coordinator.WithStore(store))
	}
	return coordinator.New(p, registry, set,
		schema.NewCoordinatorSettings(string(m), c.MaxIter, c.Temperature, c.MaxTokens),
		coordOpts...,
	)
}
