package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mikey/tweet-sentiment/internal/adapters/repl"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Provider API keys may live in a local .env file
	_ = godotenv.Load()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	service *core.SentimentService,
	predictor core.Predictor,
	cacheRepo core.CacheRepository,
	r *repl.REPL,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nUsing %s for predictions\n", service.PredictorName())

	err := r.Run(ctx)

	// Close any resources that need closing
	if closer, ok := predictor.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close predictor", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	return err
}
