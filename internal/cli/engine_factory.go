package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/internal/config"
	"github.com/aretw0/cinegraph/pkg/adapters/genai"
	"github.com/aretw0/cinegraph/pkg/capabilities"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
)

// EngineOptions tune how NewEngine wires the engine.
type EngineOptions struct {
	Dir      string
	Debug    bool
	Logger   *slog.Logger
	Reviewer ports.Reviewer
	Hooks    domain.LifecycleHooks

	// Model replaces the Gemini model. It must also implement ports.Completer
	// unless Completer is set.
	Model     ports.DecisionModel
	Completer ports.Completer
}

// NewEngine initializes an engine from cfg with standard CLI conventions.
// The returned Backend must be closed by the caller.
func NewEngine(ctx context.Context, cfg *config.Config, opts EngineOptions) (*cinegraph.Engine, *Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = createLogger(opts.Debug)
	}

	backend, err := NewBackend(cfg, opts.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing store: %w", err)
	}

	model, completer := opts.Model, opts.Completer
	if model == nil {
		gm, err := genai.New(ctx, genai.Config{
			APIKey:      cfg.Model.APIKey,
			Model:       cfg.Model.Name,
			Temperature: cfg.Model.Temperature,
			Logger:      logger,
		})
		if err != nil {
			backend.Close()
			return nil, nil, fmt.Errorf("error initializing model (set GEMINI_API_KEY): %w", err)
		}
		model = gm
	}

	timeout, _ := cfg.SearchTimeout()
	engineOpts := []cinegraph.Option{
		cinegraph.WithModel(model),
		cinegraph.WithStore(backend.Store),
		cinegraph.WithSessionOptions(backend.SessionOptions...),
		cinegraph.WithLogger(logger),
		cinegraph.WithMaxSteps(cfg.Policy.MaxSteps),
		cinegraph.WithResearchOrder(cfg.Policy.EnforceResearchOrder),
		cinegraph.WithCapabilityDeps(capabilities.Deps{
			HTTP:       &http.Client{Timeout: timeout},
			SearchURL:  cfg.Search.BaseURL,
			MaxResults: cfg.Search.MaxResults,
			Logger:     logger,
		}),
		cinegraph.WithLifecycleHooks(opts.Hooks),
	}
	if completer != nil {
		engineOpts = append(engineOpts, cinegraph.WithCompleter(completer))
	}
	if opts.Reviewer != nil {
		engineOpts = append(engineOpts, cinegraph.WithReviewer(opts.Reviewer))
	}
	if opts.Debug {
		engineOpts = append(engineOpts, cinegraph.WithLifecycleHooks(createDebugHooks(logger)))
	}

	engine, err := cinegraph.New(engineOpts...)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, backend, nil
}
