package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/MrSatan/Code-Guardian/internal/adapter/cli"
	"github.com/MrSatan/Code-Guardian/internal/adapter/git"
	githubadapter "github.com/MrSatan/Code-Guardian/internal/adapter/github"
	llmhttp "github.com/MrSatan/Code-Guardian/internal/adapter/llm/http"
	"github.com/MrSatan/Code-Guardian/internal/adapter/llm/openai"
	"github.com/MrSatan/Code-Guardian/internal/adapter/llm/static"
	"github.com/MrSatan/Code-Guardian/internal/adapter/observability"
	"github.com/MrSatan/Code-Guardian/internal/adapter/output/markdown"
	storeAdapter "github.com/MrSatan/Code-Guardian/internal/adapter/store"
	"github.com/MrSatan/Code-Guardian/internal/adapter/store/sqlite"
	"github.com/MrSatan/Code-Guardian/internal/config"
	"github.com/MrSatan/Code-Guardian/internal/usecase/analyze"
	"github.com/MrSatan/Code-Guardian/internal/usecase/chunk"
	"github.com/MrSatan/Code-Guardian/internal/usecase/review"
	"github.com/MrSatan/Code-Guardian/internal/usecase/validate"
	"github.com/MrSatan/Code-Guardian/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "guardian",
		EnvPrefix:   "GUARDIAN",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	repoName := repositoryName(repoDir)
	gitEngine := git.NewEngine(repoDir)

	// Timestamp function for deterministic output file naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}
	markdownWriter := markdown.NewWriter(nowFunc)

	logger := buildLogger(cfg.Observability)

	var analysisLogger analyze.Logger
	if logger != nil {
		analysisLogger = observability.NewAnalysisLogger(logger)
	}

	analyzer, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	// Initialize the run store if enabled
	var reviewStore review.Store
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				bridge := storeAdapter.NewBridge(sqliteStore)
				reviewStore = bridge
				defer bridge.Close()
			}
		}
	}

	// GitHub gateway is optional; pull request commands fail with a clear
	// error when it is not configured.
	var githubGateway review.GitHubGateway
	if cfg.GitHub.Token != "" && cfg.GitHub.Owner != "" && cfg.GitHub.Repo != "" {
		client := githubadapter.NewClient(cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Token)
		if cfg.GitHub.BaseURL != "" {
			if err := client.SetBaseURL(cfg.GitHub.BaseURL); err != nil {
				return fmt.Errorf("invalid github base URL: %w", err)
			}
		}
		githubGateway = githubadapter.NewBridge(client)
	}

	service := review.NewService(review.Dependencies{
		Analyzer: analyzer,
		Logger:   analysisLogger,
		Git:      gitEngine,
		GitHub:   githubGateway,
		Store:    reviewStore,
		Markdown: markdownWriter,

		Thresholds:  thresholdsFromConfig(cfg.Chunking),
		Merge:       mergeFromConfig(cfg.Merge),
		Concurrency: cfg.Analysis.ConcurrencyLimit,
		Validation: validate.Options{
			RelevanceEnabled: cfg.Validation.RelevanceEnabled,
			MinRelevance:     cfg.Validation.MinRelevance,
		},

		Provider:   cfg.Provider.Name,
		Model:      cfg.Provider.Model,
		Repository: repoName,
		OutputDir:  cfg.Output.Directory,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer:    service,
		DefaultBase: cfg.Git.DefaultBase,
		Version:     version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func repositoryName(repoDir string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "guardian"))
	}
	return paths
}

// buildLogger creates the structured logger when observability is enabled.
// With no configured format, terminals get human output and pipes get JSON.
func buildLogger(cfg config.ObservabilityConfig) llmhttp.Logger {
	if !cfg.Logging.Enabled {
		return nil
	}
	level := llmhttp.ParseLogLevel(cfg.Logging.Level)
	format := llmhttp.ParseLogFormat(cfg.Logging.Format)
	if cfg.Logging.Format == "" && !review.IsOutputTerminal() {
		format = llmhttp.LogFormatJSON
	}
	return llmhttp.NewDefaultLogger(level, format, cfg.Logging.RedactAPIKeys)
}

// buildAnalyzer selects the configured provider. The static provider
// needs no credentials and is the fallback for local testing.
func buildAnalyzer(cfg config.Config, logger llmhttp.Logger) (analyze.Analyzer, error) {
	switch cfg.Provider.Name {
	case "openai":
		apiKey := cfg.Provider.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("provider %q requires an API key (set OPENAI_API_KEY or provider.apiKey)", cfg.Provider.Name)
		}
		client := openai.NewHTTPClient(apiKey, cfg.Provider.Model)
		if cfg.Provider.BaseURL != "" {
			client.SetBaseURL(cfg.Provider.BaseURL)
		}
		if timeout := parseDuration(cfg.HTTP.Timeout, 0); timeout > 0 {
			client.SetTimeout(timeout)
		}
		client.SetRetryConfig(retryFromConfig(cfg.HTTP))
		if logger != nil {
			client.SetLogger(logger)
		}
		return openai.NewProvider(client, cfg.Provider.Rules), nil
	case "", "static":
		return static.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: openai, static)", cfg.Provider.Name)
	}
}

func retryFromConfig(cfg config.HTTPConfig) llmhttp.RetryConfig {
	retry := llmhttp.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if d := parseDuration(cfg.InitialBackoff, 0); d > 0 {
		retry.InitialBackoff = d
	}
	if d := parseDuration(cfg.MaxBackoff, 0); d > 0 {
		retry.MaxBackoff = d
	}
	if cfg.BackoffMultiplier > 0 {
		retry.Multiplier = cfg.BackoffMultiplier
	}
	return retry
}

// thresholdsFromConfig overlays configured values on the defaults so a
// partial config keeps sane sizing.
func thresholdsFromConfig(cfg config.ChunkingConfig) chunk.Thresholds {
	t := chunk.DefaultThresholds()
	if cfg.SmallFileBytes > 0 {
		t.SmallFileBytes = cfg.SmallFileBytes
	}
	if cfg.DenseFloorBytes > 0 {
		t.DenseFloorBytes = cfg.DenseFloorBytes
	}
	if cfg.DenseChunkLines > 0 {
		t.DenseChunkLines = cfg.DenseChunkLines
	}
	if cfg.SourceMaxLines > 0 {
		t.SourceMaxLines = cfg.SourceMaxLines
	}
	if cfg.SourceMaxBytes > 0 {
		t.SourceMaxBytes = cfg.SourceMaxBytes
	}
	if cfg.SourceChunkLines > 0 {
		t.SourceChunkLines = cfg.SourceChunkLines
	}
	if cfg.ProseFloorBytes > 0 {
		t.ProseFloorBytes = cfg.ProseFloorBytes
	}
	if cfg.ProseChunkLines > 0 {
		t.ProseChunkLines = cfg.ProseChunkLines
	}
	if cfg.FallbackMaxLines > 0 {
		t.FallbackMaxLines = cfg.FallbackMaxLines
	}
	if cfg.FallbackMaxBytes > 0 {
		t.FallbackMaxBytes = cfg.FallbackMaxBytes
	}
	if cfg.DefaultChunkLines > 0 {
		t.DefaultChunkLines = cfg.DefaultChunkLines
	}
	return t
}

func mergeFromConfig(cfg config.MergeConfig) chunk.MergeConfig {
	m := chunk.DefaultMergeConfig()
	if cfg.OptimalLines > 0 {
		m.OptimalLines = cfg.OptimalLines
	}
	if cfg.MaxLines > 0 {
		m.MaxLines = cfg.MaxLines
	}
	if cfg.MinLines > 0 {
		m.MinLines = cfg.MinLines
	}
	if cfg.BytesPerLine > 0 {
		m.BytesPerLine = cfg.BytesPerLine
	}
	if len(cfg.ExcludePatterns) > 0 {
		m.ExcludePatterns = cfg.ExcludePatterns
	}
	return m
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("warning: invalid duration %q, using default", s)
		return fallback
	}
	return d
}

// Compile-time interface compliance checks
var _ review.GitEngine = (*git.Engine)(nil)
var _ review.GitHubGateway = (*githubadapter.Bridge)(nil)
var _ review.Store = (*storeAdapter.Bridge)(nil)
var _ review.MarkdownWriter = (*markdown.Writer)(nil)
var _ analyze.Analyzer = (*openai.Provider)(nil)
var _ analyze.Analyzer = (*static.Provider)(nil)
var _ cli.Reviewer = (*review.Service)(nil)
