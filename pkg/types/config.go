// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "apt-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ProviderConfig toggles one evidence provider.
type ProviderConfig struct {
	// Enabled controls whether the provider is queried.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// BaseURL overrides the provider's API root. Empty uses the public endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
}

// MetMuseumConfig holds settings for the museum-collection provider.
type MetMuseumConfig struct {
	ProviderConfig `yaml:",inline" mapstructure:",squash"`

	// SampleObjects is how many object records are read per artist to
	// collect nationality and tags (default 2).
	SampleObjects int `json:"sample_objects" yaml:"sample_objects" mapstructure:"sample_objects" validate:"gte=0,lte=10"`
}

// ProvidersConfig holds settings for the evidence aggregator.
type ProvidersConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Delay is the fixed pause enforced between consecutive external calls
	// (providers and AI alike). Default 1s.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay" validate:"gte=0"`

	// BreakerFailures is the number of consecutive failures after which a
	// provider is skipped for the rest of the run (default 5).
	BreakerFailures int `json:"breaker_failures" yaml:"breaker_failures" mapstructure:"breaker_failures" validate:"gte=1"`

	Wikipedia ProviderConfig  `json:"wikipedia" yaml:"wikipedia" mapstructure:"wikipedia"`
	MetMuseum MetMuseumConfig `json:"metmuseum" yaml:"metmuseum" mapstructure:"metmuseum"`
}

// AI provider identifiers.
const (
	AIProviderClaude = "claude"
	AIProviderGemini = "gemini"
	AIProviderNone   = "none"
)

// AIConfig holds settings for the generative inference provider.
type AIConfig struct {
	// Provider selects the backend: claude, gemini, or none.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider" validate:"oneof=claude gemini none"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929", "gemini-2.0-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key. When empty the key is read from .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds a single inference call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// ReliabilityConfig holds settings for the reliability assessor.
type ReliabilityConfig struct {
	// BioMinLength is the biography length (in characters) above which the
	// biography counts as evidence (default 200).
	BioMinLength int `json:"bio_min_length" yaml:"bio_min_length" mapstructure:"bio_min_length" validate:"gte=0"`
}

// BalanceConfig holds the population balancer policy.
type BalanceConfig struct {
	// Ceiling is the population share above which an archetype counts as
	// over-represented (default 0.125, twice the equal sixteen-way share).
	Ceiling float64 `json:"ceiling" yaml:"ceiling" mapstructure:"ceiling" validate:"gt=0,lte=1"`

	// MinPopulation is the classified population size below which the
	// ceiling is not enforced (default 16).
	MinPopulation int `json:"min_population" yaml:"min_population" mapstructure:"min_population" validate:"gte=0"`

	// HighConfidence is the confidence at or above which assignments are
	// never rebalanced (default 0.7).
	HighConfidence float64 `json:"high_confidence" yaml:"high_confidence" mapstructure:"high_confidence" validate:"gt=0,lte=1"`
}

// StoreConfig holds settings for the artist store adapter.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path" validate:"required"`

	// ExportDir receives profile exports.
	ExportDir string `json:"export_dir" yaml:"export_dir" mapstructure:"export_dir"`
}

// BatchConfig holds settings for a classification batch.
type BatchConfig struct {
	// Limit caps the number of artists per batch (0 = no cap).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit" validate:"gte=0"`

	// StaleAfter re-selects profiles older than this (0 = never stale).
	StaleAfter time.Duration `json:"stale_after" yaml:"stale_after" mapstructure:"stale_after" validate:"gte=0"`
}

// OverridesConfig points at an optional extra curated override table.
type OverridesConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Config groups all engine settings.
type Config struct {
	Store       StoreConfig       `json:"store" yaml:"store" mapstructure:"store"`
	Providers   ProvidersConfig   `json:"providers" yaml:"providers" mapstructure:"providers"`
	AI          AIConfig          `json:"ai" yaml:"ai" mapstructure:"ai"`
	Reliability ReliabilityConfig `json:"reliability" yaml:"reliability" mapstructure:"reliability"`
	Balance     BalanceConfig     `json:"balance" yaml:"balance" mapstructure:"balance"`
	Batch       BatchConfig       `json:"batch" yaml:"batch" mapstructure:"batch"`
	Overrides   OverridesConfig   `json:"overrides" yaml:"overrides" mapstructure:"overrides"`
	Log         LogConfig         `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Path:      "data/apt.db",
			ExportDir: "data/export",
		},
		Providers: ProvidersConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "apt-engine/0.1",
			},
			Delay:           time.Second,
			BreakerFailures: 5,
			Wikipedia:       ProviderConfig{Enabled: true},
			MetMuseum: MetMuseumConfig{
				ProviderConfig: ProviderConfig{Enabled: true},
				SampleObjects:  2,
			},
		},
		AI: AIConfig{
			Provider: AIProviderClaude,
			Model:    "claude-sonnet-4-5-20250929",
			Timeout:  60 * time.Second,
		},
		Reliability: ReliabilityConfig{BioMinLength: 200},
		Balance: BalanceConfig{
			Ceiling:        0.125,
			MinPopulation:  16,
			HighConfidence: 0.7,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

var validate = validator.New()

// Validate checks the configuration against its field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
