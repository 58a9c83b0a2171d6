package config

// Config represents the full application configuration.
type Config struct {
	Provider      ProviderConfig      `yaml:"provider"`
	HTTP          HTTPConfig          `yaml:"http"`
	Chunking      ChunkingConfig      `yaml:"chunking"`
	Merge         MergeConfig         `yaml:"merge"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Validation    ValidationConfig    `yaml:"validation"`
	GitHub        GitHubConfig        `yaml:"github"`
	Git           GitConfig           `yaml:"git"`
	Output        OutputConfig        `yaml:"output"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ProviderConfig configures the LLM analyzer.
type ProviderConfig struct {
	Name    string `yaml:"name"` // "openai" or "static"
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Rules   string `yaml:"rules"` // review instructions sent with every chunk
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// ChunkingConfig holds the per-category split thresholds.
type ChunkingConfig struct {
	SmallFileBytes    int `yaml:"smallFileBytes"`
	DenseFloorBytes   int `yaml:"denseFloorBytes"`
	DenseChunkLines   int `yaml:"denseChunkLines"`
	SourceMaxLines    int `yaml:"sourceMaxLines"`
	SourceMaxBytes    int `yaml:"sourceMaxBytes"`
	SourceChunkLines  int `yaml:"sourceChunkLines"`
	ProseFloorBytes   int `yaml:"proseFloorBytes"`
	ProseChunkLines   int `yaml:"proseChunkLines"`
	FallbackMaxLines  int `yaml:"fallbackMaxLines"`
	FallbackMaxBytes  int `yaml:"fallbackMaxBytes"`
	DefaultChunkLines int `yaml:"defaultChunkLines"`
}

// MergeConfig bounds the chunk merger.
type MergeConfig struct {
	OptimalLines    int      `yaml:"optimalLines"`
	MaxLines        int      `yaml:"maxLines"`
	MinLines        int      `yaml:"minLines"`
	BytesPerLine    int      `yaml:"bytesPerLine"`
	ExcludePatterns []string `yaml:"excludePatterns"`
}

// AnalysisConfig bounds the batch orchestrator.
type AnalysisConfig struct {
	ConcurrencyLimit int `yaml:"concurrencyLimit"`
}

// ValidationConfig configures the feedback validator.
type ValidationConfig struct {
	RelevanceEnabled bool    `yaml:"relevanceEnabled"`
	MinRelevance     float64 `yaml:"minRelevance"`
}

// GitHubConfig configures the host adapter.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"baseURL"` // for GitHub Enterprise; empty for github.com
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
}

// GitConfig configures the local diff source.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
	DefaultBase   string `yaml:"defaultBase"`
}

// OutputConfig configures the report writer.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// StoreConfig configures run-history persistence.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls structured logging behavior.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, warn, error
	Format        string `yaml:"format"` // human, json
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}
