// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/cli/output"
	ifctest "github.com/leapstack-labs/ifclint/internal/testutil"
)

type v3 = [3]float64

// StructuralModel returns the structural model of the test project.
// It has three storeys and one finding of each kind:
//   - beam-slab is a beam shaped like a slab (SC01)
//   - slab-wrong sits on Level 1 but is assigned to Level 0
//   - wall-float is assigned to Level 2 but sits on Level 0
//   - col-unassigned has no storey
func StructuralModel() *ifctest.IFCBuilder {
	return ifctest.NewIFC().
		Storey("L0", "Level 0", 0).
		Storey("L1", "Level 1", 3).
		Storey("L2", "Level 2", 6).
		Box("IfcBeam", "beam-ok", "B1", v3{0, 0, 3}, v3{3, 0.4, 3.6}, "L1").
		Box("IfcBeam", "beam-slab", "B2", v3{0, 0, 3}, v3{4, 2, 3.2}, "L1").
		Box("IfcSlab", "slab-ok", "S1", v3{0, 0, 3}, v3{8, 5, 3.2}, "L1").
		Box("IfcSlab", "slab-wrong", "S2", v3{0, 0, 2.9}, v3{8, 5, 3.1}, "L0").
		Box("IfcColumn", "col-ok", "C1", v3{0, 0, 0}, v3{0.4, 0.4, 3}, "L0").
		Box("IfcColumn", "col-unassigned", "C2", v3{1, 1, 6.5}, v3{1.4, 1.4, 8}, "").
		Typed("IfcWall", "wall-float", "Basic Wall:Concrete 200", v3{0, 0, 0}, v3{5, 0.2, 3}, "L2").
		Typed("IfcWall", "wall-ok", "Basic Wall:Concrete 200", v3{0, 0, 3}, v3{5, 0.2, 6}, "L1")
}

// CleanModel returns a structural model without findings.
func CleanModel() *ifctest.IFCBuilder {
	return ifctest.NewIFC().
		Storey("L0", "Level 0", 0).
		Storey("L1", "Level 1", 3).
		Box("IfcColumn", "col-ok", "C1", v3{0, 0, 0}, v3{0.4, 0.4, 3}, "L0").
		Box("IfcSlab", "slab-ok", "S1", v3{0, 0, 3}, v3{8, 5, 3.2}, "L1")
}

// ArchitecturalModel returns a reference model whose floor slabs sit at
// the structural storey elevations.
func ArchitecturalModel() *ifctest.IFCBuilder {
	return ifctest.NewIFC().
		Storey("A0", "Level 0", 0).
		Storey("A1", "Level 1", 3).
		Storey("A2", "Level 2", 6).
		Box("IfcSlab", "floor-0", "F0", v3{0, 0, -0.2}, v3{10, 10, 0}, "A0").
		Box("IfcSlab", "floor-1", "F1", v3{0, 0, 2.8}, v3{10, 10, 3}, "A1").
		Box("IfcSlab", "floor-2", "F2", v3{0, 0, 5.8}, v3{10, 10, 6}, "A2")
}

// SetupTestProject creates a temporary project holding the tower model
// set (structural and architectural) under models/.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	models := filepath.Join(tmpDir, "models")
	if err := os.MkdirAll(models, 0750); err != nil {
		t.Fatalf("failed to create directory %s: %v", models, err)
	}

	StructuralModel().WriteFile(t, models, "tower-STR.ifc")
	ArchitecturalModel().WriteFile(t, models, "tower-ARCH.ifc")

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
