package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/internal/engine"
	"github.com/leapstack-labs/ifclint/pkg/report"
	"github.com/spf13/cobra"
)

// watchDebounce delays a re-check until the model file stops changing.
const watchDebounce = 300 * time.Millisecond

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Pair     string // Model set prefix or number
	Format   string // Output format: text, markdown, json
	NoReport bool   // Skip writing the BCF file
	ExitZero bool   // Succeed even when issues are found
	Watch    bool   // Re-run on model changes
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [model.ifc]",
		Short: "Check a structural model and write a BCF report",
		Long: `Check a structural IFC model for misclassified elements and storey
assignment errors, and write the findings as a BCF 3.0 package.

Without a model argument the models directory is scanned for
<prefix>-STR.ifc files. A matching <prefix>-ARCH.ifc is used as the
reference for floor levels unless --reference is given. With several
model sets, choose one with --pair or interactively on a terminal.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check the only model set in the current directory
  ifclint check

  # Check a specific model
  ifclint check models/tower-STR.ifc

  # Pick a set by prefix and write the report elsewhere
  ifclint check --pair tower --report out/tower.bcfzip

  # Skip a shape rule and keep checking as the model is saved
  ifclint check --disable SC04 --watch`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Pair, "pair", "p", "", "Model set to check, by prefix or number (see 'ifclint pairs')")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().String("report", "", "BCF file to write (default: structural_issues.bcfzip)")
	cmd.Flags().StringSlice("category", nil, "IFC categories to check (default: IfcBeam,IfcSlab,IfcColumn,IfcWall)")
	cmd.Flags().StringSlice("disable", nil, "Shape rule IDs to disable")
	cmd.Flags().BoolVar(&opts.NoReport, "no-report", false, "Do not write the BCF file")
	cmd.Flags().BoolVar(&opts.ExitZero, "exit-zero", false, "Exit with status 0 even when issues are found")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run the check whenever the model changes")
	_ = cmd.MarkFlagFilename("report", "bcfzip")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx, err := NewCommandContext(cmd, args, opts.Pair)
	if err != nil {
		return err
	}
	cmdCtx.WithFormat(cmd, opts.Format)

	if opts.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watchCheck(ctx, cmdCtx, opts)
	}

	res, err := checkOnce(cmd.Context(), cmdCtx, opts)
	if err != nil {
		return err
	}
	if res.HasFindings() && !opts.ExitZero {
		return fmt.Errorf("structural issues found")
	}
	return nil
}

// checkOnce runs the engine, writes the report and renders the result.
func checkOnce(ctx context.Context, c *CommandContext, opts *CheckOptions) (*engine.Result, error) {
	res, err := c.Engine.Check(ctx)
	if err != nil {
		return nil, err
	}

	reportPath := ""
	if !opts.NoReport {
		reportPath = c.Cfg.Report
		if dir := filepath.Dir(reportPath); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		if err := res.Report.WriteBCF(reportPath, time.Now()); err != nil {
			return nil, fmt.Errorf("writing BCF report: %w", err)
		}
		c.Logger.Debug("wrote BCF report", "path", reportPath, "topics", len(res.Report.Issues)+1)
	}

	renderCheck(c.Renderer, c, res, reportPath)
	return res, nil
}

// watchCheck checks once, then again after every change to the model
// files until ctx is cancelled.
func watchCheck(ctx context.Context, c *CommandContext, opts *CheckOptions) error {
	if _, err := checkOnce(ctx, c, opts); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files on save, so watch directories.
	watched := watchedFiles(c)
	for dir := range watchedDirs(watched) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	c.Renderer.Println(c.Renderer.Styles().Muted.Render("Watching for changes, press Ctrl+C to stop"))

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	rerun := &rerunner{run: func(name string) {
		if ctx.Err() != nil {
			return
		}
		c.Logger.Info("change detected", "file", filepath.Base(name))
		c.Engine.Reload()
		if _, err := checkOnce(ctx, c, opts); err != nil {
			c.Renderer.Error(err.Error())
		}
	}}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			mu.Unlock()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(watchDebounce, func() { rerun.trigger(name) })
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watcher error", "error", err)
		}
	}
}

// rerunner serialises re-checks without blocking the event loop.
// Changes arriving during a run are coalesced into one more run.
type rerunner struct {
	run func(name string)

	mu      sync.Mutex
	running bool
	pending string
}

func (r *rerunner) trigger(name string) {
	r.mu.Lock()
	if r.running {
		r.pending = name
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	for {
		r.run(name)

		r.mu.Lock()
		name, r.pending = r.pending, ""
		if name == "" {
			r.running = false
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
}

func watchedFiles(c *CommandContext) map[string]bool {
	files := make(map[string]bool)
	for _, p := range []string{c.Pair.Model(), c.Engine.ReferencePath()} {
		if p != "" {
			files[filepath.Clean(p)] = true
		}
	}
	return files
}

func watchedDirs(files map[string]bool) map[string]bool {
	dirs := make(map[string]bool)
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	return dirs
}

// CheckOutput is the JSON output structure for a check.
type CheckOutput struct {
	Project    string         `json:"project"`
	Schema     string         `json:"schema"`
	Model      string         `json:"model"`
	Reference  string         `json:"reference,omitempty"`
	Elements   int            `json:"elements"`
	Dropped    int            `json:"dropped"`
	Storeys    []StoreyOutput `json:"storeys"`
	Issues     []report.Issue `json:"issues"`
	Summary    report.Summary `json:"summary"`
	Report     string         `json:"report,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

func renderCheck(r *output.Renderer, c *CommandContext, res *engine.Result, reportPath string) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(CheckOutput{
			Project:    res.ProjectName,
			Schema:     res.Schema,
			Model:      c.Pair.Model(),
			Reference:  referenceUsed(c, res),
			Elements:   res.Elements,
			Dropped:    res.Dropped,
			Storeys:    storeyOutputs(res),
			Issues:     res.Report.Issues,
			Summary:    res.Report.Summary,
			Report:     reportPath,
			DurationMS: res.Duration.Milliseconds(),
		})
		return
	}

	styles := r.Styles()
	r.Header("Structural check: " + res.ProjectName)
	r.KeyValue("Model", styles.Path.Render(c.Pair.Model()))
	if ref := referenceUsed(c, res); ref != "" {
		r.KeyValue("Reference", styles.Path.Render(ref))
	} else {
		r.KeyValue("Reference", styles.Muted.Render("none, using storey elevations"))
	}
	r.KeyValue("Schema", res.Schema)
	r.KeyValue("Storeys", len(res.Storeys))
	elements := fmt.Sprintf("%d checked", res.Elements-res.Dropped)
	if res.Dropped > 0 {
		elements += styles.Muted.Render(fmt.Sprintf(", %d without geometry", res.Dropped))
	}
	r.KeyValue("Elements", elements)
	r.Println("")

	if !res.HasFindings() {
		r.Success("No structural issues found")
	} else {
		rows := make([][]string, 0, len(res.Report.Issues))
		for _, is := range res.Report.Issues {
			rows = append(rows, []string{
				getSeverityStyle(styles, is.Severity).Render(is.Severity.String()),
				output.Label(string(is.Kind)),
				is.RuleID,
				is.GlobalID,
				is.Category,
				is.Name,
			})
		}
		r.Section("Issues")
		r.Table([]string{"Severity", "Issue", "Rule", "GlobalId", "Category", "Name"}, rows)
		r.Println("")
		renderSummary(r, res.Report.Summary)
	}

	if reportPath != "" {
		r.Println("")
		r.Success(fmt.Sprintf("BCF report written to %s (%d topics)", reportPath, len(res.Report.Issues)+1))
	}
}

func renderSummary(r *output.Renderer, s report.Summary) {
	r.Section("Summary")
	parts := []string{fmt.Sprintf("%d issues", s.Total())}
	for _, p := range []struct {
		n     int
		label string
	}{
		{s.ClassMismatch, "class mismatch"},
		{s.WrongFloor, "wrong floor"},
		{s.Floating, "floating"},
		{s.Unassigned, "unassigned"},
	} {
		if p.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", p.n, p.label))
		}
	}
	r.Println(strings.Join(parts, ", "))
	for _, sc := range s.WrongFloorByStorey {
		r.Printf("  wrong floor on %s: %d\n", r.Styles().Bold.Render(sc.Name), sc.Count)
	}
}

func referenceUsed(c *CommandContext, res *engine.Result) string {
	if !res.Reference {
		return ""
	}
	return c.Engine.ReferencePath()
}
