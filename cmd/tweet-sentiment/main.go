package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mikey/tweet-sentiment/internal/di"
	"github.com/mikey/tweet-sentiment/internal/factory"
	"go.uber.org/zap"
)

var configFile = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	// Provider API keys may live in a local .env file
	_ = godotenv.Load()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
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
func run(logger *zap.Logger, trainerFactory *factory.TrainerFactory) error {
	defer logger.Sync()

	// Stop training on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trainer, err := trainerFactory.CreateTrainer(ctx, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to create trainer: %w", err)
	}

	summary, err := trainer.Run(ctx)
	if err != nil {
		logger.Error("Training failed", zap.Error(err))
		return err
	}

	fmt.Printf("\nModel comparison:\n")
	for _, row := range summary.Comparison {
		fmt.Printf("%-20s accuracy=%.4f f1=%.4f precision=%.4f recall=%.4f\n",
			row.Model, row.Accuracy, row.F1, row.Precision, row.Recall)
	}
	return nil
}
