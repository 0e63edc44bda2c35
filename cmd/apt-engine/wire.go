// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/apt-engine/internal/balance"
	"github.com/pdiddy/apt-engine/internal/evidence"
	"github.com/pdiddy/apt-engine/internal/httputil"
	"github.com/pdiddy/apt-engine/internal/inference"
	"github.com/pdiddy/apt-engine/internal/logging"
	"github.com/pdiddy/apt-engine/internal/pipeline"
	"github.com/pdiddy/apt-engine/internal/reliability"
	"github.com/pdiddy/apt-engine/internal/secrets"
	"github.com/pdiddy/apt-engine/internal/store"
	"github.com/pdiddy/apt-engine/pkg/types"
)

const defaultGeminiModel = "gemini-2.0-flash"

// openStore opens the configured artist store.
func openStore(c types.Config) (*store.Store, error) {
	return store.Open(c.Store)
}

// buildRunner assembles the classification pipeline from configuration.
// The caller closes the returned store.
func buildRunner(ctx context.Context, c types.Config) (*pipeline.Runner, *store.Store, error) {
	st, err := openStore(c)
	if err != nil {
		return nil, nil, err
	}

	// One pacer spaces every external call of the batch, AI included.
	pacer := httputil.NewPacer(c.Providers.Delay)
	client := &httputil.Client{
		HTTP:      &http.Client{Timeout: c.Providers.Timeout},
		Pacer:     pacer,
		UserAgent: c.Providers.UserAgent,
	}

	var providers []evidence.Provider
	if c.Providers.Wikipedia.Enabled {
		providers = append(providers, evidence.WithBreaker(
			evidence.NewWikipedia(client, c.Providers.Wikipedia.BaseURL), c.Providers.BreakerFailures))
	}
	if c.Providers.MetMuseum.Enabled {
		providers = append(providers, evidence.WithBreaker(
			evidence.NewMetMuseum(client, c.Providers.MetMuseum.BaseURL, c.Providers.MetMuseum.SampleObjects),
			c.Providers.BreakerFailures))
	}

	overrides, err := inference.LoadOverrides(c.Overrides.File)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	backend, err := buildBackend(ctx, c.AI)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	return &pipeline.Runner{
		Store:    st,
		Evidence: evidence.NewAggregator(providers...),
		Assessor: reliability.NewAssessor(c.Reliability.BioMinLength),
		Engine: inference.NewEngine(inference.Options{
			Backend:   backend,
			Pacer:     pacer,
			Timeout:   c.AI.Timeout,
			Overrides: overrides,
		}),
		Policy: balance.PolicyFrom(c.Balance),
	}, st, nil
}

// buildBackend returns the configured AI backend, or nil when the provider
// is "none" or its API key is missing. A missing key is not an error: the
// batch runs on heuristics alone.
func buildBackend(ctx context.Context, c types.AIConfig) (inference.AIBackend, error) {
	if c.Provider == types.AIProviderNone {
		return nil, nil
	}

	key := secrets.Resolve(c.APIKey, loadedSecrets, secrets.KeyFor(c.Provider))
	if key == "" {
		logging.Warn().Str("provider", c.Provider).
			Msgf("no API key in config or .secrets/%s; AI inference disabled", secrets.KeyFor(c.Provider))
		return nil, nil
	}

	switch c.Provider {
	case types.AIProviderClaude:
		return &inference.ClaudeBackend{
			APIKey: key,
			Model:  c.Model,
			Client: &http.Client{Timeout: c.Timeout},
		}, nil
	case types.AIProviderGemini:
		model := c.Model
		if model == "" || strings.HasPrefix(model, "claude") {
			model = defaultGeminiModel
		}
		g, err := inference.NewGeminiBackend(ctx, key, model, &http.Client{Timeout: c.Timeout})
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", c.Provider)
	}
}
