package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cyffff/riskai/pkg/cli/config"
	"github.com/cyffff/riskai/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a score policy TOML file",
		ArgsUsage: "<policy.toml>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one policy file path is required")
			}
			path := c.Args().First()

			policy, err := config.LoadPolicyFile(path)
			if err != nil {
				return goerr.Wrap(err, "policy file is invalid", goerr.V("path", path))
			}

			logging.Default().Info("policy file is valid",
				"path", path,
				"high_threshold", policy.HighThreshold,
				"medium_threshold", policy.MediumThreshold,
			)
			return nil
		},
	}
}
