package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, 15*1024, cfg.Chunking.SmallFileBytes)
	assert.Equal(t, 30*1024, cfg.Chunking.DenseFloorBytes)
	assert.Equal(t, 400, cfg.Chunking.SourceMaxLines)
	assert.Equal(t, 120, cfg.Chunking.SourceChunkLines)
	assert.Equal(t, 100, cfg.Chunking.ProseChunkLines)

	assert.Equal(t, 300, cfg.Merge.OptimalLines)
	assert.Equal(t, 500, cfg.Merge.MaxLines)
	assert.Equal(t, 60, cfg.Merge.BytesPerLine)

	assert.Equal(t, 3, cfg.Analysis.ConcurrencyLimit)
	assert.False(t, cfg.Validation.RelevanceEnabled)
	assert.InDelta(t, 0.3, cfg.Validation.MinRelevance, 0.0001)

	assert.Equal(t, "static", cfg.Provider.Name)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
chunking:
  sourceMaxLines: 250
analysis:
  concurrencyLimit: 8
validation:
  relevanceEnabled: true
  minRelevance: 0.5
merge:
  excludePatterns:
    - "generated/**"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guardian.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Chunking.SourceMaxLines)
	assert.Equal(t, 8, cfg.Analysis.ConcurrencyLimit)
	assert.True(t, cfg.Validation.RelevanceEnabled)
	assert.InDelta(t, 0.5, cfg.Validation.MinRelevance, 0.0001)
	assert.Equal(t, []string{"generated/**"}, cfg.Merge.ExcludePatterns)

	// Untouched keys keep defaults.
	assert.Equal(t, 300, cfg.Merge.OptimalLines)
}

func TestLoad_ExpandsEnvInValues(t *testing.T) {
	os.Setenv("TEST_GUARDIAN_TOKEN", "ghp-token-123")
	defer os.Unsetenv("TEST_GUARDIAN_TOKEN")

	dir := t.TempDir()
	content := `
github:
  token: ${TEST_GUARDIAN_TOKEN}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guardian.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "ghp-token-123", cfg.GitHub.Token)
}

func TestExpandEnvString(t *testing.T) {
	os.Setenv("TEST_API_KEY", "secret-key-123")
	defer os.Unsetenv("TEST_API_KEY")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"expand ${VAR} syntax", "${TEST_API_KEY}", "secret-key-123"},
		{"expand $VAR syntax", "$TEST_API_KEY", "secret-key-123"},
		{"expand in middle of string", "key:${TEST_API_KEY}:end", "key:secret-key-123:end"},
		{"leave non-existent var unchanged", "${NONEXISTENT_VAR}", "${NONEXISTENT_VAR}"},
		{"handle empty string", "", ""},
		{"handle string without variables", "plain-text", "plain-text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvString(tt.input))
		})
	}
}

func TestLocateConfigFile_PrefersEarlierPaths(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, "guardian.yaml"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(second, "guardian.yaml"), []byte("{}"), 0o644))

	got := locateConfigFile("guardian", []string{first, second})
	assert.Equal(t, filepath.Join(first, "guardian.yaml"), got)
}
