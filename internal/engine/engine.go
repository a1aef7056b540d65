// Package engine runs the structural checks over an IFC model.
// It loads the structural model, extracts element bounding boxes, runs the
// shape classifier and the storey reconciler, and merges their findings
// into a report.
package engine

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/leapstack-labs/ifclint/pkg/classify"
	"github.com/leapstack-labs/ifclint/pkg/ifc"
	"github.com/leapstack-labs/ifclint/pkg/storey"
)

// DefaultCategories are the IFC entity types checked when none are configured.
// Subtypes such as IfcWallStandardCase are included automatically.
var DefaultCategories = []string{"IfcBeam", "IfcSlab", "IfcColumn", "IfcWall"}

// Engine orchestrates one structural check.
type Engine struct {
	// Structural model (lazy loaded)
	model   *ifc.Model
	modelMu sync.Mutex

	logger     *slog.Logger
	classifier *classify.Classifier

	modelPath     string
	referencePath string
	categories    []string
	workers       int
	tieBreak      storey.TieBreak
	ceiling       float64
	author        string
}

// Config holds engine configuration.
type Config struct {
	// ModelPath is the structural IFC model to check.
	ModelPath string
	// ReferencePath is an optional architectural model used to measure
	// expected floor levels.
	ReferencePath string
	// Categories lists the IFC entity types to check (default DefaultCategories).
	Categories []string
	// Workers bounds geometry extraction concurrency (default NumCPU).
	Workers int
	// TieBreak selects a storey for elements spanning several (default lowest).
	TieBreak string
	// StoreyCeiling is the height of the top storey range (default 10000).
	StoreyCeiling float64
	// DisabledRules lists shape rule IDs to skip.
	DisabledRules []string
	// Author is written to every issue (default report.DefaultAuthor).
	Author string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New validates the configuration and creates an engine. The model is
// opened on first use.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if strings.TrimSpace(cfg.ModelPath) == "" {
		return nil, fmt.Errorf("no structural model given")
	}
	tb, err := storey.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, err
	}
	classifier, err := classify.New(cfg.DisabledRules)
	if err != nil {
		return nil, err
	}

	categories := cfg.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger.Debug("initializing engine",
		"model", cfg.ModelPath,
		"reference", cfg.ReferencePath,
		"workers", workers,
		"tie_break", tb,
	)

	return &Engine{
		logger:        logger,
		classifier:    classifier,
		modelPath:     cfg.ModelPath,
		referencePath: cfg.ReferencePath,
		categories:    categories,
		workers:       workers,
		tieBreak:      tb,
		ceiling:       cfg.StoreyCeiling,
		author:        cfg.Author,
	}, nil
}

// Model returns the structural model, opening it on first call.
func (e *Engine) Model() (*ifc.Model, error) {
	e.modelMu.Lock()
	defer e.modelMu.Unlock()
	if e.model != nil {
		return e.model, nil
	}
	m, err := ifc.Open(e.modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open structural model: %w", err)
	}
	e.logger.Debug("opened model", "path", e.modelPath, "schema", m.Schema(), "entities", m.File().Len())
	e.model = m
	return m, nil
}

// Reload drops the cached model so the next check re-reads it from disk.
func (e *Engine) Reload() {
	e.modelMu.Lock()
	defer e.modelMu.Unlock()
	e.model = nil
}

// ModelPath returns the structural model's path.
func (e *Engine) ModelPath() string { return e.modelPath }

// ReferencePath returns the reference model's path, empty when none is set.
func (e *Engine) ReferencePath() string { return e.referencePath }

// Classifier returns the configured shape classifier.
func (e *Engine) Classifier() *classify.Classifier { return e.classifier }

// StoreyIndex builds the storey index of a model using the engine's
// ceiling and tie-break settings.
func (e *Engine) StoreyIndex(m *ifc.Model) *storey.Index {
	return storey.Build(Storeys(m), e.ceiling).WithTieBreak(e.tieBreak)
}

// Storeys converts a model's building storeys to index input.
func Storeys(m *ifc.Model) []storey.Storey {
	src := m.Storeys()
	out := make([]storey.Storey, len(src))
	for i, s := range src {
		out[i] = storey.Storey{ID: s.GlobalID(), Name: s.Name(), Elevation: s.Elevation}
	}
	return out
}
