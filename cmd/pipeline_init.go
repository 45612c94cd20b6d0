package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/assemble"
	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/ident"
	"github.com/sells-group/proposal-cli/internal/narrative"
	"github.com/sells-group/proposal-cli/internal/phases"
	"github.com/sells-group/proposal-cli/internal/pipeline"
	"github.com/sells-group/proposal-cli/internal/pricing"
	"github.com/sells-group/proposal-cli/internal/resilience"
	"github.com/sells-group/proposal-cli/internal/store"
	anthropicpkg "github.com/sells-group/proposal-cli/pkg/anthropic"
	"github.com/sells-group/proposal-cli/pkg/backend"
	"github.com/sells-group/proposal-cli/pkg/gemini"
)

// pipelineOptions selects how initPipeline assembles the environment.
type pipelineOptions struct {
	// mode is the config validation mode: "generate" or "serve".
	mode string

	// skipNarrative builds the pipeline without a backend; slots stay
	// pending and no credentials are required.
	skipNarrative bool

	// promptsPath overrides the embedded prompt catalog.
	promptsPath string

	// deterministicIDs swaps uuid identifiers for a counting sequence.
	deterministicIDs bool

	// guarded wraps the provider in a circuit breaker; the serve command
	// sets it so one dead provider cannot stall every webhook run.
	guarded bool
}

// pipelineEnv holds the initialized store and pipeline for the
// generate/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, rate tables, backend, and pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, opts pipelineOptions) (*pipelineEnv, error) {
	mode := opts.mode
	if opts.skipNarrative {
		// No backend means no credential requirements.
		mode = "price"
	}
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	rates, err := loadRates()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var ids ident.Source = ident.Random{}
	if opts.deterministicIDs {
		ids = &ident.Sequence{}
	}

	var exec *narrative.Executor
	if !opts.skipNarrative {
		gen, genErr := initGenerator(ctx)
		if genErr != nil {
			_ = st.Close()
			return nil, genErr
		}
		if opts.guarded {
			gen = narrative.Guard(gen, resilience.FromCircuitConfig(
				cfg.Server.BreakerThreshold, cfg.Server.BreakerResetSecs))
		}

		policy, policyErr := narrative.PolicyFor(cfg)
		if policyErr != nil {
			_ = st.Close()
			return nil, policyErr
		}
		catalog, catErr := narrative.LoadCatalog(opts.promptsPath)
		if catErr != nil {
			_ = st.Close()
			return nil, catErr
		}
		exec = narrative.NewExecutor(gen, policy, catalog, cfg.Narrative)
	}

	p := pipeline.New(cfg, st,
		pricing.New(rates),
		phases.NewBuilder(rates, ids),
		assemble.New(cfg.Proposal, ids),
		exec,
	)

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}

// initGenerator builds the configured provider adapter.
func initGenerator(ctx context.Context) (backend.Generator, error) {
	switch cfg.Narrative.Provider {
	case "anthropic":
		return anthropicpkg.NewGenerator(cfg.Anthropic.Key), nil
	case "gemini":
		return gemini.New(ctx, cfg.Gemini.Key)
	default:
		return nil, eris.Errorf("unsupported narrative provider: %s", cfg.Narrative.Provider)
	}
}

// loadRates reads the configured rate tables. A missing file falls back
// to the built-in tables so a fresh checkout prices out of the box.
func loadRates() (*config.RateConfig, error) {
	path := cfg.Rates.Path
	if path != "" {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			zap.L().Warn("rates file not found, using built-in tables", zap.String("path", path))
			path = ""
		}
	}
	return config.LoadRates(path)
}
