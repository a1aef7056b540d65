package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/ifclint/internal/cli/config"
	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/internal/engine"
	"github.com/leapstack-labs/ifclint/internal/pairs"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
	// Pair is the model set the engine checks.
	Pair pairs.Pair
}

// NewCommandContext resolves the model set to work on and creates an
// engine and renderer for it. args may name the structural model; the
// pair choice selects from the models directory otherwise.
func NewCommandContext(cmd *cobra.Command, args []string, choice string) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	pair, err := resolvePair(cmdCtx, args, choice)
	if err != nil {
		return nil, err
	}

	eng, err := createEngine(cmdCtx.Cfg, pair, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}
	cmdCtx.Engine = eng
	cmdCtx.Pair = pair
	return cmdCtx, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't read a model.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// WithFormat replaces the renderer when a per-command format is given.
func (c *CommandContext) WithFormat(cmd *cobra.Command, format string) {
	if format != "" {
		c.Renderer = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// resolvePair picks the model set: an explicit file argument, the pair
// chosen by prefix or index, the only pair in the models directory, or an
// interactive choice on a terminal.
func resolvePair(c *CommandContext, args []string, choice string) (pairs.Pair, error) {
	if len(args) > 0 {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return pairs.Pair{}, fmt.Errorf("structural model %s: %w", path, err)
		}
		return pairs.Pair{Prefix: prefixOf(path), Structural: path}, nil
	}

	candidates, err := checkablePairs(c.Cfg)
	if err != nil {
		return pairs.Pair{}, err
	}
	if len(candidates) == 0 {
		return pairs.Pair{}, fmt.Errorf("no IFC models found in %s\nHint: pass a model path or use --models-dir", c.Cfg.ModelsDir)
	}

	switch {
	case choice != "":
		return pairs.Select(candidates, choice)
	case len(candidates) == 1:
		return candidates[0], nil
	case c.Renderer.IsTTY():
		return pickPair(candidates)
	}
	return pairs.Pair{}, fmt.Errorf("%d model sets found in %s\nHint: choose one with --pair <prefix|number> (see 'ifclint pairs')",
		len(candidates), c.Cfg.ModelsDir)
}

// checkablePairs lists the model sets in the models directory that have
// a model to check. Their order defines the numbers accepted by --pair.
func checkablePairs(cfg *config.Config) ([]pairs.Pair, error) {
	if err := cfg.ValidateDirectories(); err != nil {
		return nil, err
	}
	found, err := pairs.Scan(cfg.ModelsDir)
	if err != nil {
		return nil, err
	}
	out := found[:0]
	for _, p := range found {
		if p.Model() != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func prefixOf(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	upper := strings.ToUpper(stem)
	for _, suffix := range []string{pairs.SuffixStructural, pairs.SuffixArchitectural, pairs.SuffixMEP} {
		if strings.HasSuffix(upper, suffix) {
			return stem[:len(stem)-len(suffix)]
		}
	}
	return stem
}

func createEngine(cfg *config.Config, pair pairs.Pair, logger *slog.Logger) (*engine.Engine, error) {
	engineCfg := cfg.EngineConfig(pair.Model(), pair.Architectural)
	engineCfg.Logger = logger
	return engine.New(engineCfg)
}
