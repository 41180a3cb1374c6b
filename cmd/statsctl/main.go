package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/volleystats/internal/app"
	"github.com/riskibarqy/volleystats/internal/config"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// servicesFactory builds the use cases a command runs against. Tests swap it
// for an in-memory wiring.
type servicesFactory func(ctx context.Context, logger *logging.Logger) (*app.Services, error)

type cli struct {
	logger   *logging.Logger
	out      io.Writer
	services servicesFactory
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewJSONWriter(zapcore.Lock(os.Stderr), logging.LevelWarn).With("component", "statsctl")
	logging.SetDefault(logger)

	c := &cli{
		logger: logger,
		out:    os.Stdout,
		services: func(ctx context.Context, logger *logging.Logger) (*app.Services, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return app.NewServices(ctx, cfg, logger)
		},
	}

	if err := c.rootCommand().ExecuteContext(ctx); err != nil {
		logger.Error("statsctl failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "statsctl",
		Short:         "Parse volleyball box scores and merge them with federation CSV exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.out)
	root.AddCommand(c.parseCommand(), c.mergeCommand())
	return root
}
