package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"example.com/gymgenius/internal/cli"
	"example.com/gymgenius/internal/config"
	"example.com/gymgenius/internal/generation"
	"example.com/gymgenius/internal/logging"
	"example.com/gymgenius/internal/persistence"
	"example.com/gymgenius/internal/planstore"
	"example.com/gymgenius/internal/prompts"
	"example.com/gymgenius/internal/upstream"
)

func main() {
	cfg := config.Load()
	// The CLI keeps its plan across runs, so the in-memory default does not apply here.
	if _, set := os.LookupEnv("STORE_BACKEND"); !set {
		cfg.Store.Backend = config.StoreLibSQL
	}

	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	env := &cli.Env{
		Logger: logger,
		Config: cfg,
		NewToolkit: func(ctx context.Context) (*generation.Toolkit, error) {
			catalog := prompts.MustLoad()
			client, err := upstream.New(ctx, cfg.Generation, catalog, logger.Named("upstream"))
			if err != nil {
				return nil, err
			}
			return generation.NewToolkit(client, catalog, generation.Models{
				Image: cfg.Generation.ImageModel,
				Audio: cfg.Generation.AudioModel,
			}, logger), nil
		},
		OpenStore: func(ctx context.Context) (*planstore.Store, func(), error) {
			backend, err := persistence.Open(ctx, cfg.Store, cfg.PlanEventsTopic)
			if err != nil {
				return nil, nil, err
			}
			store := planstore.NewStore(backend.Slot, cfg.Store.SlotKey, planstore.WithLogger(logger.Named("planstore")))
			return store, backend.Close, nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand(env).ExecuteContext(ctx); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), cli.Describe(err))
		logger.Debug("command failed", zap.Error(err))
		os.Exit(1)
	}
}
