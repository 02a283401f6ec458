package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/tweet-sentiment/internal/config"
	"github.com/mikey/tweet-sentiment/internal/factory"
	"github.com/mikey/tweet-sentiment/internal/logging"
	"github.com/mikey/tweet-sentiment/internal/store"
	"github.com/mikey/tweet-sentiment/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for training
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.New(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideShared(container); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTrainerFactory); err != nil {
		return nil, err
	}

	return container, nil
}

// provideShared registers the factories and components used by both binaries
func provideShared(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) (*utils.TextProcessor, error) {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register model store
	return container.Provide(func(cfg *config.Config, logger *zap.Logger) *store.ModelStore {
		return store.NewModelStore(cfg.GetModels().Dir, logger)
	})
}
