package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance.
// An explicit path takes precedence over the standard search locations.
func New(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/tweet-sentiment/")
		v.AddConfigPath("$HOME/.tweet-sentiment")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("TWEET_SENTIMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Dataset defaults
	v.SetDefault("data.path", "data/training.1600000.processed.noemoticon.csv")
	v.SetDefault("data.format", "sentiment140")
	v.SetDefault("data.encoding", "latin1")
	v.SetDefault("data.limit", 0)
	v.SetDefault("data.test_size", 0.2)
	v.SetDefault("data.seed", 42)

	// Preprocessing defaults
	v.SetDefault("preprocess.stopwords_language", "english")

	// Vectorizer defaults
	v.SetDefault("vectorizer.max_features", 5000)
	v.SetDefault("vectorizer.min_df", 1)
	v.SetDefault("vectorizer.sublinear_tf", false)

	// Model store defaults
	v.SetDefault("models.dir", "models")

	// Training defaults
	v.SetDefault("training.models", []string{"logistic_regression"})
	v.SetDefault("training.cross_validate", true)
	v.SetDefault("training.cv_folds", 5)
	v.SetDefault("training.grid_search", false)
	v.SetDefault("training.workers", 0)
	v.SetDefault("training.examples", true)

	// Hyperparameter defaults
	v.SetDefault("params.logistic_regression.c", 1.0)
	v.SetDefault("params.logistic_regression.epochs", 20)
	v.SetDefault("params.svm.c", 1.0)
	v.SetDefault("params.svm.epochs", 10)
	v.SetDefault("params.random_forest.n_estimators", 50)
	v.SetDefault("params.random_forest.max_depth", 20)
	v.SetDefault("params.naive_bayes.tfidf", 0)
	v.SetDefault("params.neural_network.hidden", 64)
	v.SetDefault("params.neural_network.epochs", 10)

	// Grid search defaults
	v.SetDefault("grid.logistic_regression.c", []any{0.1, 1, 10})
	v.SetDefault("grid.svm.c", []any{0.1, 1, 10})
	v.SetDefault("grid.random_forest.n_estimators", []any{50, 100})
	v.SetDefault("grid.random_forest.max_depth", []any{10, 20})
	v.SetDefault("grid.naive_bayes.tfidf", []any{0, 1})
	v.SetDefault("grid.neural_network.hidden", []any{32, 64})

	// Results defaults
	v.SetDefault("results.dir", "results")
	v.SetDefault("results.plots", true)

	// Baseline defaults
	v.SetDefault("baselines.vader", true)
	v.SetDefault("baselines.vader_threshold", 0.05)
	v.SetDefault("baselines.llm", false)
	v.SetDefault("baselines.llm_sample", 100)

	// Predictor defaults
	v.SetDefault("predictor.backend", "model")
	v.SetDefault("predictor.model", "logistic_regression")

	// LLM provider defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.retry_attempts", 3)
	v.SetDefault("llm.retry_delay", "1s")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 200)
	v.SetDefault("bedrock.temperature", 0.0)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_text_size", 1024)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 200)
	v.SetDefault("gemini.temperature", 0.0)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_text_size", 1024)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 200)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_text_size", 1024)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "data/prediction_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/tweet_sentiment")
	v.SetDefault("cache.valkey.address", "localhost:6379")
	v.SetDefault("cache.valkey.password", "")
	v.SetDefault("cache.valkey.db", 0)
	v.SetDefault("cache.valkey.tls", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetFloat64Slice parses a list of numbers, given either as a YAML list or a
// space separated string
func (c *Config) GetFloat64Slice(key string) ([]float64, error) {
	raw := c.v.GetStringSlice(key)
	out := make([]float64, 0, len(raw))
	for _, s := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in %s: %w", s, key, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// subKeys returns the leaf names directly below prefix, in sorted order
func (c *Config) subKeys(prefix string) []string {
	prefix += "."
	var keys []string
	for _, k := range c.v.AllKeys() {
		if rest, ok := strings.CutPrefix(k, prefix); ok && !strings.Contains(rest, ".") {
			keys = append(keys, rest)
		}
	}
	sort.Strings(keys)
	return keys
}

// Set overrides a configuration value
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
