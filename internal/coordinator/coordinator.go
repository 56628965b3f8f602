// Package coordinator runs one biological query end to end: it selects a
// reasoning mode, resolves the mode's tools from the layer adapters, and
// drives the bounded model↔tool loop until the model produces an answer.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bioreason/bioreason/internal/layers"
	"github.com/bioreason/bioreason/internal/modes"
	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/session"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
	"github.com/bioreason/bioreason/internal/tools"
	"github.com/bioreason/bioreason/internal/triage"
)

const defaultMaxIter = 10

// ModeResolver looks up mode definitions.
type ModeResolver interface {
	Resolve(id string) (modes.Definition, error)
}

// TranscriptStore persists finished queries.
type TranscriptStore interface {
	Save(rec *session.Record) error
}

// Selector chooses how a query's mode is picked: an explicit identifier or a
// classifier run over the query text.
type Selector struct {
	mode       string
	classifier triage.Classifier
}

// Mode selects the mode id directly.
func Mode(id string) Selector { return Selector{mode: id} }

// Classify selects the mode by running c over the query.
func Classify(c triage.Classifier) Selector { return Selector{classifier: c} }

// Coordinator orchestrates queries against shared, read-mostly registries.
// It is safe for concurrent use; every call to ProcessQuery owns its own
// transcript and request-scoped tool registry.
type Coordinator struct {
	provider     schema.LLMProvider
	modes        ModeResolver
	layers       layers.Set
	settings     schema.CoordinatorSettings
	systemPrompt string
	store        TranscriptStore
	onProgress   func(string)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSystemPrompt replaces the prompt used for modes without one.
func WithSystemPrompt(p string) Option {
	return func(c *Coordinator) {
		if p != "" {
			c.systemPrompt = p
		}
	}
}

// WithStore persists every finished query, successful or not.
func WithStore(s TranscriptStore) Option { return func(c *Coordinator) { c.store = s } }

// WithProgress reports interim model text and tool hints while a query runs.
func WithProgress(fn func(string)) Option { return func(c *Coordinator) { c.onProgress = fn } }

func New(
	provider schema.LLMProvider,
	modeResolver ModeResolver,
	adapters layers.Set,
	settings schema.CoordinatorSettings,
	opts ...Option,
) *Coordinator {
	if settings.MaxIter <= 0 {
		settings.MaxIter = defaultMaxIter
	}
	if settings.Model == "" {
		settings.Model = provider.DefaultModel()
	}
	c := &Coordinator{
		provider:     provider,
		modes:        modeResolver,
		layers:       adapters,
		settings:     settings,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the loop parameters in effect.
func (c *Coordinator) Settings() schema.CoordinatorSettings { return c.settings }

// ProcessQuery answers query using the mode chosen by sel. The returned
// Result is non-nil even on failure and holds the partial transcript.
func (c *Coordinator) ProcessQuery(ctx context.Context, query string, sel Selector) (*Result, error) {
	res := &Result{
		SessionID:  uuid.NewString(),
		Query:      query,
		State:      StateFailed,
		Transcript: schema.NewMessages(),
	}
	err := c.process(ctx, res, sel)
	if err != nil {
		res.State = StateFailed
		slog.Error("Query failed", "session", res.SessionID, "mode", res.Mode, "iterations", res.Iterations, "err", err)
	}
	c.persist(res, err)
	return res, err
}

func (c *Coordinator) process(ctx context.Context, res *Result, sel Selector) error {
	def, err := c.selectMode(ctx, res, sel)
	if err != nil {
		return err
	}
	res.Mode = def.ID

	registry, err := c.ResolveTools(def)
	if err != nil {
		return err
	}

	prompt, err := def.RenderPrompt(res.Query)
	if err != nil {
		return fmt.Errorf("render prompt for mode %s: %w", def.ID, err)
	}
	res.Transcript.AddSystem(llmutils.StringOrDefault(prompt, c.systemPrompt))
	res.Transcript.AddUser(res.Query)

	ctx = tools.WithQuery(ctx, tools.QueryContext{SessionID: res.SessionID, Mode: def.ID})
	return c.run(ctx, res, registry)
}

func (c *Coordinator) selectMode(ctx context.Context, res *Result, sel Selector) (modes.Definition, error) {
	id, source := sel.mode, "explicit"
	if sel.classifier != nil && id == "" {
		cls, err := sel.classifier.Classify(ctx, res.Query)
		if err != nil {
			return modes.Definition{}, fmt.Errorf("classify query: %w", err)
		}
		res.Classification = &cls
		id, source = cls.Mode, "classifier"
	}
	def, err := c.modes.Resolve(id)
	if err != nil {
		return modes.Definition{}, err
	}
	slog.Info("Mode selected", "session", res.SessionID, "mode", def.ID, "source", source)
	return def, nil
}

// ResolveTools fetches every tool def requires from its layer adapter and
// merges them into a request-scoped registry. Any missing tool fails the
// whole resolution.
func (c *Coordinator) ResolveTools(def modes.Definition) (*tools.Registry, error) {
	regs := make([]*tools.Registry, 0, len(schema.Layers))
	for _, layer := range schema.Layers {
		names := def.Tools.ForLayer(layer)
		if len(names) == 0 {
			continue
		}
		adapter, ok := c.layers[layer]
		if !ok {
			return nil, &ToolResolutionError{Mode: def.ID, Layer: layer, Tool: names[0], Err: errors.New("no adapter for layer")}
		}
		ds := make([]tools.Descriptor, 0, len(names))
		for _, name := range names {
			d, err := adapter.GetTool(name)
			if err != nil {
				return nil, &ToolResolutionError{Mode: def.ID, Layer: layer, Tool: name, Err: err}
			}
			ds = append(ds, d)
		}
		reg, err := tools.FromDescriptors(ds...)
		if err != nil {
			return nil, &ToolResolutionError{Mode: def.ID, Layer: layer, Err: err}
		}
		regs = append(regs, reg)
	}

	merged, err := tools.Merge(regs...)
	if err != nil {
		tre := &ToolResolutionError{Mode: def.ID, Err: err}
		var dup *tools.DuplicateToolError
		if errors.As(err, &dup) {
			tre.Tool = dup.Name
		}
		return nil, tre
	}
	slog.Debug("Tools resolved", "mode", def.ID, "count", merged.Len())
	return merged, nil
}

// run drives the model↔tool state machine over res.Transcript.
func (c *Coordinator) run(ctx context.Context, res *Result, registry *tools.Registry) error {
	opts := schema.NewChatOptions(c.settings.Model, c.settings.MaxTokens, c.settings.Temperature)
	definitions := registry.Definitions()

	var (
		resp      schema.LLMResponse
		corrected bool // the model has had its one corrective turn for an unknown tool
	)
	state := StateAwaitingModel
	for {
		res.State = state
		slog.Debug("Coordinator state", "session", res.SessionID, "state", state, "iteration", res.Iterations)

		switch state {
		case StateAwaitingModel:
			var err error
			resp, err = c.provider.Chat(ctx, res.Transcript, definitions, opts)
			res.Iterations++
			if err != nil {
				return fmt.Errorf("model completion (iteration %d): %w", res.Iterations, err)
			}
			res.Usage.InputTokens += resp.Usage.InputTokens
			res.Usage.OutputTokens += resp.Usage.OutputTokens

			if !resp.HasToolCalls() {
				answer := strings.TrimSpace(llmutils.StripThink(resp.Text()))
				res.Transcript.AddAssistant(&answer, nil, resp.ReasoningContent)
				res.Answer = answer
				state = StateDone
				continue
			}

			c.progress(resp)
			res.Transcript.AddAssistant(resp.Content, toTranscriptCalls(resp.ToolCalls), resp.ReasoningContent)
			if res.Iterations >= c.settings.MaxIter {
				return &LoopExceededError{Mode: res.Mode, MaxIter: c.settings.MaxIter}
			}
			state = StateAwaitingTools

		case StateAwaitingTools:
			unknown := false
			for _, tc := range resp.ToolCalls {
				d, err := registry.Get(tc.Name)
				if err != nil {
					if corrected {
						return &ToolResolutionError{Mode: res.Mode, Tool: tc.Name, DuringLoop: true, Err: err}
					}
					unknown = true
					slog.Warn("Model requested unknown tool", "session", res.SessionID, "name", tc.Name)
					res.Transcript.AddToolError(tc.Id, tc.Name, fmt.Sprintf("tool %q is not available; use only the tools provided", tc.Name))
					continue
				}
				if err := c.invoke(ctx, res, d, tc); err != nil {
					return err
				}
			}
			if unknown {
				corrected = true
			}
			state = StateAwaitingModel

		case StateDone:
			slog.Info("Query answered", "session", res.SessionID, "mode", res.Mode, "iterations", res.Iterations, "tools", len(res.ToolsUsed))
			return nil
		}
	}
}

// invoke validates and executes one tool call, appending its result to the
// transcript. Only cancellation of ctx is returned as an error; every other
// failure is reported to the model.
func (c *Coordinator) invoke(ctx context.Context, res *Result, d tools.Descriptor, tc schema.ToolCallRequest) error {
	args := tc.Arguments
	if args == nil {
		args = map[string]any{}
	}
	slog.Info("Tool call", "name", tc.Name, "layer", d.Layer, "args", llmutils.Truncate(schema.ToolCall{Arguments: args}.ArgumentsJSON(), 200))

	if err := tools.ValidateArgs(d, args); err != nil {
		slog.Warn("Tool input rejected", "name", tc.Name, "err", err)
		res.Transcript.AddToolError(tc.Id, tc.Name, err.Error())
		return nil
	}

	res.ToolsUsed = append(res.ToolsUsed, tc.Name)
	start := time.Now()
	out, err := d.Tool.Execute(ctx, args)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Transcript.AddToolError(tc.Id, tc.Name, ctxErr.Error())
			return fmt.Errorf("tool %s: %w", tc.Name, ctxErr)
		}
		slog.Warn("Tool failed", "name", tc.Name, "err", err)
		res.Transcript.AddToolError(tc.Id, tc.Name, err.Error())
		return nil
	}
	slog.Debug("Tool result", "name", tc.Name, "bytes", len(out), "elapsed", time.Since(start))
	res.Transcript.AddToolResult(tc.Id, tc.Name, out)
	return nil
}

func (c *Coordinator) progress(resp schema.LLMResponse) {
	if c.onProgress == nil {
		return
	}
	if clean := llmutils.StripThink(resp.Text()); clean != "" {
		c.onProgress(clean)
	}
	c.onProgress(llmutils.ToolHint(resp.ToolCalls))
}

func (c *Coordinator) persist(res *Result, err error) {
	if c.store == nil {
		return
	}
	rec := &session.Record{
		ID:         res.SessionID,
		Query:      res.Query,
		Mode:       res.Mode,
		State:      string(res.State),
		Iterations: res.Iterations,
		Answer:     res.Answer,
		CreatedAt:  time.Now(),
		Messages:   res.Transcript.Clone(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if saveErr := c.store.Save(rec); saveErr != nil {
		slog.Warn("Failed to save transcript", "session", res.SessionID, "err", saveErr)
	}
}

func toTranscriptCalls(calls []schema.ToolCallRequest) []schema.ToolCall {
	out := make([]schema.ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, schema.ToolCall{ID: tc.Id, Name: tc.Name, Arguments: tc.Arguments})
	}
	return out
}
