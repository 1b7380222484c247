package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cyffff/riskai/pkg/cli/config"
	httpctrl "github.com/cyffff/riskai/pkg/controller/http"
	"github.com/cyffff/riskai/pkg/usecase"
	"github.com/cyffff/riskai/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var policyCfg config.Policy
	var featureAPICfg config.FeatureAPI

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKAI_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, featureAPICfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load score policy")
			}

			ucOpts := []usecase.Option{
				usecase.WithPolicy(policy),
			}
			if client := featureAPICfg.Configure(); client != nil {
				ucOpts = append(ucOpts,
					usecase.WithValueProvider(client),
					usecase.WithInsightProvider(client),
				)
			} else {
				logging.Default().Info("Feature platform not configured, assessment uses request values only")
			}

			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"backend", repoCfg.Backend(),
					"policy_high", policy.HighThreshold,
					"policy_medium", policy.MediumThreshold,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
