// Package main provides tests for the ifclint CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/cli"
	"github.com/leapstack-labs/ifclint/internal/cli/config"
	clitest "github.com/leapstack-labs/ifclint/internal/cli/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "ifclint v"+cli.Version) {
		t.Errorf("version output should contain 'ifclint v%s', got: %s", cli.Version, output)
	}
}

func TestCheckEndToEnd(t *testing.T) {
	dir := clitest.SetupTestProject(t)
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })

	report := filepath.Join(dir, "out", "issues.bcfzip")
	output, err := execute(t, "check", "--models-dir", "models", "--report", report, "-o", "markdown")
	if err == nil || !strings.Contains(err.Error(), "structural issues found") {
		t.Fatalf("check should report issues, got err = %v", err)
	}
	if !strings.Contains(output, "beam-slab") {
		t.Errorf("output should list beam-slab, got: %s", output)
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("report not written: %v", err)
	}

	output, err = execute(t, "issues", report, "-o", "markdown")
	if err != nil {
		t.Fatalf("issues command error = %v", err)
	}
	if !strings.Contains(output, "beam-slab") {
		t.Errorf("issues output should select beam-slab, got: %s", output)
	}
}
