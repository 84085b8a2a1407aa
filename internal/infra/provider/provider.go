// Package provider implements clients for remote workout generation
// services. Providers are opaque remote calls with latency and failure
// modes; retry and fallback decisions live above this package.
package provider

import (
	"context"

	"github.com/vietddude/coach/internal/core/domain"
)

// Provider is a remote workout generator.
type Provider interface {
	// Name identifies the provider for logs and metrics.
	Name() string

	// Ready reports whether the service can accept generation calls.
	Ready(ctx context.Context) error

	// Generate produces a workout from canonical variables plus the
	// internal engine's recommendations and prompt augmentation.
	Generate(ctx context.Context, vars domain.CanonicalVariables, recs []domain.Recommendation, prompt string) (*domain.GeneratedWorkout, error)
}

// Config holds provider connection settings.
type Config struct {
	Kind      string `yaml:"kind"` // "http" or "grpc"
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	HealthURL string `yaml:"health_url"`
	APIKey    string `yaml:"api_key"`
}
