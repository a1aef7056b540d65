package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/testutil"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "ifclint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("models-dir", "", "models directory")
	flags.String("tie-break", "", "tie-break policy")
	flags.Int("workers", 0, "workers")
	flags.StringSlice("disable", nil, "disabled rules")
	flags.Bool("watch", false, "not configuration")
	return flags
}

// TestLoadConfig_Defaults tests loading without any config file.
func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultAuthor, cfg.Author)
	assert.Equal(t, DefaultTieBreak, cfg.TieBreak)
	assert.Equal(t, DefaultCeiling, cfg.StoreyCeiling)
	assert.Equal(t, []string{"IfcBeam", "IfcSlab", "IfcColumn", "IfcWall"}, cfg.Categories)
	assert.Empty(t, cfg.DisabledRules)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultReport), cfg.Report)
	assert.Same(t, cfg, GetCurrentConfig())
}

// TestLoadConfig_File tests values and path resolution from a config file.
func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `models_dir: models
report: out/issues.bcfzip
author: QA
categories: [IfcBeam, " IfcSlab "]
tie_break: midpoint
storey_ceiling: 50
disabled_rules: [sc04]
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(dir, "models"), cfg.ModelsDir)
	assert.Equal(t, filepath.Join(dir, "out", "issues.bcfzip"), cfg.Report)
	assert.Equal(t, "QA", cfg.Author)
	assert.Equal(t, []string{"IfcBeam", "IfcSlab"}, cfg.Categories)
	assert.Equal(t, "midpoint", cfg.TieBreak)
	assert.Equal(t, 50.0, cfg.StoreyCeiling)
	assert.Equal(t, []string{"sc04"}, cfg.DisabledRules)
}

// TestLoadConfig_SearchUpward tests that a config file in a parent directory is found.
func TestLoadConfig_SearchUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "author: from_parent\n")
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0750))
	chdir(t, sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "from_parent", cfg.Author)
	assert.Equal(t, "ifclint.yaml", filepath.Base(GetConfigFileUsed()))
}

// TestLoadConfig_Precedence tests flags > env vars > config file > defaults.
func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `models_dir: from_file
tie_break: midpoint
workers: 2
`)

	t.Run("env overrides file", func(t *testing.T) {
		ResetConfig()
		t.Setenv("IFCLINT_MODELS_DIR", "from_env")
		t.Setenv("IFCLINT_WORKERS", "3")
		t.Setenv("IFCLINT_DISABLED_RULES", "SC01, SC02")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "from_env"), cfg.ModelsDir)
		assert.Equal(t, 3, cfg.Workers)
		assert.Equal(t, []string{"SC01", "SC02"}, cfg.DisabledRules)
		assert.Equal(t, "midpoint", cfg.TieBreak)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("IFCLINT_TIE_BREAK", "lowest")
		cwd, err := os.Getwd()
		require.NoError(t, err)

		flags := testFlags()
		require.NoError(t, flags.Set("models-dir", "from_flag"))
		require.NoError(t, flags.Set("tie-break", "max_overlap"))
		require.NoError(t, flags.Set("disable", "SC03"))
		require.NoError(t, flags.Set("watch", "true"))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		// Flag paths are relative to the working directory.
		assert.Equal(t, filepath.Join(cwd, "from_flag"), cfg.ModelsDir)
		assert.Equal(t, "max_overlap", cfg.TieBreak)
		assert.Equal(t, []string{"SC03"}, cfg.DisabledRules)
		assert.Equal(t, 2, cfg.Workers)
	})

	t.Run("unset flag keeps lower layers", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfig(path, testFlags())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "from_file"), cfg.ModelsDir)
		assert.Equal(t, "midpoint", cfg.TieBreak)
	})
}

// TestLoadConfig_Errors tests invalid configurations.
func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown tie-break", "tie_break: highest\n", "invalid tie-break"},
		{"unknown output", "output: html\n", "invalid output format"},
		{"negative workers", "workers: -1\n", "workers must not be negative"},
		{"unknown rule", "disabled_rules: [XX99]\n", "unknown rule"},
		{"malformed yaml", "author: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
			assert.Nil(t, GetCurrentConfig())
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.Error(t, err)
	})
}

// TestConfig_ValidateDirectories tests the models directory check.
func TestConfig_ValidateDirectories(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, (&Config{ModelsDir: dir}).ValidateDirectories())

	err := (&Config{ModelsDir: filepath.Join(dir, "missing")}).ValidateDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models directory does not exist")

	file := filepath.Join(dir, "a.ifc")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	assert.Error(t, (&Config{ModelsDir: file}).ValidateDirectories())
}

func TestConfig_EngineConfig(t *testing.T) {
	cfg := Default()
	cfg.Reference = "arch.ifc"
	cfg.DisabledRules = []string{"SC01"}

	ec := cfg.EngineConfig("str.ifc", "")
	assert.Equal(t, "str.ifc", ec.ModelPath)
	assert.Equal(t, "arch.ifc", ec.ReferencePath)
	assert.Equal(t, []string{"SC01"}, ec.DisabledRules)
	assert.Equal(t, DefaultAuthor, ec.Author)

	assert.Equal(t, "arch.ifc", cfg.EngineConfig("str.ifc", "pair-ARCH.ifc").ReferencePath)
	cfg.Reference = ""
	assert.Equal(t, "pair-ARCH.ifc", cfg.EngineConfig("str.ifc", "pair-ARCH.ifc").ReferencePath)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := testutil.NewTestLogger(t)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Same(t, logger, ctx.Value(LoggerKey()))
}
