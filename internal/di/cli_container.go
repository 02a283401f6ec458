package di

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/tweet-sentiment/internal/adapters/repl"
	"github.com/mikey/tweet-sentiment/internal/config"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/factory"
	"github.com/mikey/tweet-sentiment/internal/logging"
)

// CLIFlags contains all command line flags for the REPL
type CLIFlags struct {
	ConfigFile string
	Model      string
	Backend    string
	Provider   string
	NoCache    bool
	Verbose    bool
	JSONLog    bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) *CLIFlags {
	flags := &CLIFlags{}

	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")
	fs.StringVar(&flags.Model, "model", "", "Saved model to load (logistic_regression, svm, random_forest, naive_bayes, neural_network)")
	fs.StringVar(&flags.Backend, "backend", "", "Prediction backend (model, vader, llm)")
	fs.StringVar(&flags.Provider, "provider", "", "LLM provider for the llm backend (bedrock, gemini, openai)")
	fs.BoolVar(&flags.NoCache, "no-cache", false, "Disable the prediction cache")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	// the flag set reports its own parse errors
	_ = fs.Parse(args)
	return flags
}

// applyFlags overrides configuration values with the flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	if flags.Model != "" {
		cfg.Set("predictor.model", flags.Model)
	}
	if flags.Backend != "" {
		cfg.Set("predictor.backend", flags.Backend)
	}
	if flags.Provider != "" {
		cfg.Set("llm.provider", flags.Provider)
	}
	if flags.NoCache {
		cfg.Set("cache.enabled", false)
	}
}

// BuildCLIContainer creates and configures a dependency injection container for the REPL
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.New(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideShared(container); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewPredictorFactory); err != nil {
		return nil, err
	}

	// Register predictor
	if err := container.Provide(func(f *factory.PredictorFactory) (core.Predictor, error) {
		return f.CreatePredictor(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register sentiment service
	if err := container.Provide(func(
		predictor core.Predictor,
		cacheRepo core.CacheRepository,
		f *factory.CacheFactory,
		logger *zap.Logger,
	) (*core.SentimentService, error) {
		var ttl time.Duration
		if f.IsCacheEnabled() {
			var err error
			if ttl, err = f.GetCacheTTL(); err != nil {
				return nil, err
			}
		}
		return core.NewSentimentService(predictor, cacheRepo, logger, f.IsCacheEnabled(), ttl), nil
	}); err != nil {
		return nil, err
	}

	// Register REPL
	if err := container.Provide(func(
		service *core.SentimentService,
		flags *CLIFlags,
		logger *zap.Logger,
	) *repl.REPL {
		return repl.NewREPL(service, os.Stdin, os.Stdout, logger, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
