package config

import (
	"fmt"
	"time"
)

// DataConfig represents the dataset location and format
type DataConfig struct {
	Path     string
	Format   string
	Encoding string
	Limit    int
	TestSize float64
	Seed     int64
}

// VectorizerConfig represents the TF-IDF settings
type VectorizerConfig struct {
	MaxFeatures int
	MinDF       int
	SublinearTF bool
}

// ModelsConfig represents where trained models live
type ModelsConfig struct {
	Dir string
}

// TrainingConfig represents the training run settings
type TrainingConfig struct {
	Models        []string
	CrossValidate bool
	CVFolds       int
	GridSearch    bool
	Workers       int
	Examples      bool
}

// ResultsConfig represents where evaluation output is written
type ResultsConfig struct {
	Dir   string
	Plots bool
}

// BaselinesConfig represents the non-trained comparison predictors
type BaselinesConfig struct {
	Vader          bool
	VaderThreshold float64
	LLM            bool
	LLMSample      int
}

// PredictorConfig selects the backend used for interactive prediction
type PredictorConfig struct {
	Backend string
	Model   string
}

// CacheConfig represents the prediction cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	Valkey           ValkeyConfig
}

// ValkeyConfig represents the Valkey connection
type ValkeyConfig struct {
	Address  string
	Password string
	DB       int
	TLS      bool
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider      string
	RetryAttempts int
	RetryDelay    time.Duration
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// LoggingConfig represents the logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// GetData returns the dataset configuration
func (c *Config) GetData() DataConfig {
	return DataConfig{
		Path:     c.GetString("data.path"),
		Format:   c.GetString("data.format"),
		Encoding: c.GetString("data.encoding"),
		Limit:    c.GetInt("data.limit"),
		TestSize: c.GetFloat64("data.test_size"),
		Seed:     int64(c.GetInt("data.seed")),
	}
}

// GetStopwordsLanguage returns the stopword list to use
func (c *Config) GetStopwordsLanguage() string {
	return c.GetString("preprocess.stopwords_language")
}

// GetVectorizer returns the vectorizer configuration
func (c *Config) GetVectorizer() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures: c.GetInt("vectorizer.max_features"),
		MinDF:       c.GetInt("vectorizer.min_df"),
		SublinearTF: c.GetBool("vectorizer.sublinear_tf"),
	}
}

// GetModels returns the model store configuration
func (c *Config) GetModels() ModelsConfig {
	return ModelsConfig{
		Dir: c.GetString("models.dir"),
	}
}

// GetTraining returns the training configuration
func (c *Config) GetTraining() TrainingConfig {
	return TrainingConfig{
		Models:        c.GetStringSlice("training.models"),
		CrossValidate: c.GetBool("training.cross_validate"),
		CVFolds:       c.GetInt("training.cv_folds"),
		GridSearch:    c.GetBool("training.grid_search"),
		Workers:       c.GetInt("training.workers"),
		Examples:      c.GetBool("training.examples"),
	}
}

// GetModelParams returns the hyperparameters configured for a classifier kind
func (c *Config) GetModelParams(kind string) map[string]float64 {
	prefix := "params." + kind
	params := make(map[string]float64)
	for _, k := range c.subKeys(prefix) {
		params[k] = c.GetFloat64(prefix + "." + k)
	}
	return params
}

// GetGrid returns the grid search values configured for a classifier kind
func (c *Config) GetGrid(kind string) (map[string][]float64, error) {
	prefix := "grid." + kind
	grid := make(map[string][]float64)
	for _, k := range c.subKeys(prefix) {
		values, err := c.GetFloat64Slice(prefix + "." + k)
		if err != nil {
			return nil, err
		}
		grid[k] = values
	}
	return grid, nil
}

// GetResults returns the results configuration
func (c *Config) GetResults() ResultsConfig {
	return ResultsConfig{
		Dir:   c.GetString("results.dir"),
		Plots: c.GetBool("results.plots"),
	}
}

// GetBaselines returns the baseline configuration
func (c *Config) GetBaselines() BaselinesConfig {
	return BaselinesConfig{
		Vader:          c.GetBool("baselines.vader"),
		VaderThreshold: c.GetFloat64("baselines.vader_threshold"),
		LLM:            c.GetBool("baselines.llm"),
		LLMSample:      c.GetInt("baselines.llm_sample"),
	}
}

// GetPredictor returns the interactive predictor configuration
func (c *Config) GetPredictor() PredictorConfig {
	return PredictorConfig{
		Backend: c.GetString("predictor.backend"),
		Model:   c.GetString("predictor.model"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache ttl: %w", err)
	}
	cleanupFreq, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanupFreq,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		Valkey: ValkeyConfig{
			Address:  c.GetString("cache.valkey.address"),
			Password: c.GetString("cache.valkey.password"),
			DB:       c.GetInt("cache.valkey.db"),
			TLS:      c.GetBool("cache.valkey.tls"),
		},
	}, nil
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	delay, err := c.GetDuration("llm.retry_delay")
	if err != nil {
		return LLMConfig{}, fmt.Errorf("invalid llm retry delay: %w", err)
	}
	return LLMConfig{
		Provider:      c.GetString("llm.provider"),
		RetryAttempts: c.GetInt("llm.retry_attempts"),
		RetryDelay:    delay,
	}, nil
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxTextSize: c.GetInt("bedrock.max_text_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxTextSize: c.GetInt("gemini.max_text_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxTextSize: c.GetInt("openai.max_text_size"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:  c.GetString("logging.level"),
		Format: c.GetString("logging.format"),
	}
}
