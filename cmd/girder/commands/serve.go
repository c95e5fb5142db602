package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/girderweb/girder/bridge"
	"github.com/girderweb/girder/config"
	"github.com/girderweb/girder/dispatch"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a girder server from a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewBofryLoader().WithYAMLFile(configPath)
			cfg := &config.Config{}
			if err := loader.Load(cfg); err != nil {
				return err
			}

			logger, err := config.BuildLogger(cfg.Logger)
			if err != nil {
				return err
			}
			defer logger.Sync()

			servlet, err := buildServlet(cfg, logger)
			if err != nil {
				return err
			}
			return runServlet(servlet, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "configuration file")

	return cmd
}

// buildServlet assembles a servlet from configuration: one context
// loader per module publishes that module's registry, and action
// creation delegates to the registries with the classic reflection
// path as fallback.
func buildServlet(cfg *config.Config, logger *zap.Logger) (*dispatch.Servlet, error) {
	opts := []dispatch.Option{
		dispatch.WithConfig(cfg),
		dispatch.WithCreatorFactory(bridge.DelegatingCreatorFactory(dispatch.NewClassicCreator(logger))),
	}
	if logger != nil {
		opts = append(opts, dispatch.WithLogger(logger))
	}
	for _, spec := range cfg.Modules {
		opts = append(opts, dispatch.WithPlugin(bridge.LoaderFromSpec(spec)))
	}
	return dispatch.NewServlet(opts...)
}

// runServlet starts the servlet and blocks until it fails or a
// termination signal arrives, then shuts it down gracefully.
func runServlet(servlet *dispatch.Servlet, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := servlet.Run(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := servlet.Shutdown(ctx); err != nil {
		if logger != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
		return err
	}
	return nil
}
