// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/apt-engine/pkg/types"
)

// registerDefaults makes every configuration key known to v, which
// AutomaticEnv needs to resolve APT_ENGINE_* variables on Unmarshal.
func registerDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.export_dir", d.Store.ExportDir)

	v.SetDefault("providers.timeout", d.Providers.Timeout)
	v.SetDefault("providers.user_agent", d.Providers.UserAgent)
	v.SetDefault("providers.delay", d.Providers.Delay)
	v.SetDefault("providers.breaker_failures", d.Providers.BreakerFailures)
	v.SetDefault("providers.wikipedia.enabled", d.Providers.Wikipedia.Enabled)
	v.SetDefault("providers.wikipedia.base_url", d.Providers.Wikipedia.BaseURL)
	v.SetDefault("providers.metmuseum.enabled", d.Providers.MetMuseum.Enabled)
	v.SetDefault("providers.metmuseum.base_url", d.Providers.MetMuseum.BaseURL)
	v.SetDefault("providers.metmuseum.sample_objects", d.Providers.MetMuseum.SampleObjects)

	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.timeout", d.AI.Timeout)

	v.SetDefault("reliability.bio_min_length", d.Reliability.BioMinLength)

	v.SetDefault("balance.ceiling", d.Balance.Ceiling)
	v.SetDefault("balance.min_population", d.Balance.MinPopulation)
	v.SetDefault("balance.high_confidence", d.Balance.HighConfidence)

	v.SetDefault("batch.limit", d.Batch.Limit)
	v.SetDefault("batch.stale_after", d.Batch.StaleAfter)

	v.SetDefault("overrides.file", d.Overrides.File)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadConfig resolves the configuration from defaults, the config file,
// APT_ENGINE_* environment variables and bound flags, then validates it.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	c := types.DefaultConfig()
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return types.Config{}, err
	}
	return c, nil
}
