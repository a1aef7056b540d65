package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/cli/config"
	"github.com/leapstack-labs/ifclint/internal/cli/output"
	clitest "github.com/leapstack-labs/ifclint/internal/cli/testutil"
	"github.com/spf13/cobra"
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

// setupModels creates the test project and moves into its models
// directory, so the default configuration finds the tower set.
func setupModels(t *testing.T) string {
	t.Helper()
	config.ResetConfig()
	dir := filepath.Join(clitest.SetupTestProject(t), "models")
	chdir(t, dir)
	return dir
}

// execute runs cmd with args and returns its standard output and error output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func newTextRenderer() *output.Renderer {
	return clitest.NewTestRendererText().Renderer
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewCheckCommand(), "check [model.ifc]", []string{"pair", "format", "report", "category", "disable", "no-report", "exit-zero", "watch"}},
		{NewPairsCommand(), "pairs", []string{"format"}},
		{NewStoreysCommand(), "storeys [model.ifc]", []string{"pair", "format"}},
		{NewInventoryCommand(), "inventory [model.ifc]", []string{"pair", "format", "entity", "type"}},
		{NewRulesCommand(), "rules [rule-id]", []string{"kind", "verbose", "format"}},
		{NewIssuesCommand(), "issues [report.bcfzip]", []string{"format", "label"}},
		{NewConvertCommand(), "convert [model.ifc]", []string{"pair", "format", "rule", "out", "force"}},
		{NewInitCommand(), "init [directory]", []string{"force"}},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "abc123", "2026-01-02")
	assert.Equal(t, "version", cmd.Use)

	out, _, err := execute(t, cmd)
	require.NoError(t, err)
	assert.Contains(t, out, "ifclint v1.2.3")
	assert.Contains(t, out, "commit abc123, built 2026-01-02")
}

func TestResolvePair(t *testing.T) {
	dir := setupModels(t)
	clitest.CleanModel().WriteFile(t, dir, "annex-STR.ifc")

	newCtx := func() *CommandContext {
		c := NewCommandContextWithoutEngine(&cobra.Command{})
		c.Renderer = clitest.NewTestRendererMarkdown().Renderer
		return c
	}

	t.Run("explicit file", func(t *testing.T) {
		p, err := resolvePair(newCtx(), []string{filepath.Join(dir, "tower-STR.ifc")}, "")
		require.NoError(t, err)
		assert.Equal(t, "tower", p.Prefix)
		assert.Empty(t, p.Architectural)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := resolvePair(newCtx(), []string{"nope-STR.ifc"}, "")
		assert.ErrorContains(t, err, "structural model nope-STR.ifc")
	})

	t.Run("choice by prefix", func(t *testing.T) {
		p, err := resolvePair(newCtx(), nil, "tower")
		require.NoError(t, err)
		assert.Equal(t, "tower-STR.ifc", filepath.Base(p.Structural))
		assert.Equal(t, "tower-ARCH.ifc", filepath.Base(p.Architectural))
	})

	t.Run("choice by number", func(t *testing.T) {
		p, err := resolvePair(newCtx(), nil, "1")
		require.NoError(t, err)
		assert.Equal(t, "annex", p.Prefix)
	})

	t.Run("ambiguous without terminal", func(t *testing.T) {
		_, err := resolvePair(newCtx(), nil, "")
		assert.ErrorContains(t, err, "2 model sets found")
	})
}

func TestResolvePair_NoModels(t *testing.T) {
	config.ResetConfig()
	chdir(t, t.TempDir())

	c := NewCommandContextWithoutEngine(&cobra.Command{})
	_, err := resolvePair(c, nil, "")
	assert.ErrorContains(t, err, "no IFC models found")
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"models/tower-STR.ifc", "tower"},
		{"tower-str.IFC", "tower"},
		{"/abs/annex-ARCH.ifc", "annex"},
		{"plain.ifc", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, prefixOf(tt.path))
		})
	}
}
