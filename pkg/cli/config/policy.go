package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/cyffff/riskai/pkg/domain/model"
)

// Policy holds CLI flags for score classification configuration
type Policy struct {
	path string
}

// PolicyFile is the TOML layout of a score policy file:
//
//	[policy]
//	high_threshold = 80.0
//	medium_threshold = 50.0
type PolicyFile struct {
	Policy model.ScorePolicy `toml:"policy"`
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to score policy TOML file (defaults apply when omitted)",
			Sources:     cli.EnvVars("RISKAI_POLICY"),
			Destination: &p.path,
		},
	}
}

// Path returns the configured policy file path
func (p *Policy) Path() string {
	return p.path
}

// Configure loads and validates the score policy. Without a file the default
// thresholds are used.
func (p *Policy) Configure() (model.ScorePolicy, error) {
	if p.path == "" {
		return model.DefaultScorePolicy(), nil
	}
	return LoadPolicyFile(p.path)
}

// LoadPolicyFile reads and validates a score policy from a TOML file
func LoadPolicyFile(path string) (model.ScorePolicy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ScorePolicy{}, goerr.Wrap(err, "failed to read policy file", goerr.V("path", path))
	}

	file := PolicyFile{Policy: model.DefaultScorePolicy()}
	if err := toml.Unmarshal(data, &file); err != nil {
		return model.ScorePolicy{}, goerr.Wrap(err, "failed to parse TOML policy", goerr.V("path", path))
	}

	if err := file.Policy.Validate(); err != nil {
		return model.ScorePolicy{}, goerr.Wrap(err, "policy validation failed", goerr.V("path", path))
	}

	return file.Policy, nil
}
