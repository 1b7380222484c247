package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/cyffff/riskai/pkg/service/featureapi"
	"github.com/cyffff/riskai/pkg/utils/logging"
)

// FeatureAPI holds CLI flags for the upstream feature platform client
type FeatureAPI struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// Flags returns CLI flags for feature API configuration
func (f *FeatureAPI) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "feature-api-url",
			Usage:       "Base URL of the upstream feature platform (empty disables the integration)",
			Sources:     cli.EnvVars("RISKAI_FEATURE_API_URL"),
			Destination: &f.baseURL,
		},
		&cli.StringFlag{
			Name:        "feature-api-key",
			Usage:       "API key for the upstream feature platform",
			Sources:     cli.EnvVars("RISKAI_FEATURE_API_KEY"),
			Destination: &f.apiKey,
		},
		&cli.DurationFlag{
			Name:        "feature-api-timeout",
			Usage:       "Timeout for feature platform requests",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("RISKAI_FEATURE_API_TIMEOUT"),
			Destination: &f.timeout,
		},
	}
}

// IsConfigured reports whether the integration is enabled
func (f *FeatureAPI) IsConfigured() bool {
	return f.baseURL != ""
}

// Configure builds the feature platform client, or returns nil when no base
// URL is set.
func (f *FeatureAPI) Configure() *featureapi.Client {
	if !f.IsConfigured() {
		return nil
	}

	opts := []featureapi.Option{
		featureapi.WithTimeout(f.timeout),
	}
	if f.apiKey != "" {
		opts = append(opts, featureapi.WithAPIKey(f.apiKey))
	}

	logging.Default().Info("Feature platform integration enabled",
		"base_url", f.baseURL, "timeout", f.timeout)
	return featureapi.New(f.baseURL, opts...)
}
