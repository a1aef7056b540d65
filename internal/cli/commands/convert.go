package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/internal/engine"
	"github.com/leapstack-labs/ifclint/pkg/classify"
	"github.com/spf13/cobra"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	Pair   string
	Format string
	Rules  []string // Shape rules whose findings are converted; all when empty
	Out    string   // Output model path
	Force  bool     // Overwrite an existing output file
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [model.ifc]",
		Short: "Retype misclassified elements into a new model",
		Long: `Retype every element flagged by a shape rule to the category its
geometry suggests and write the result as a new IFC file.

The source model is never modified. Use --rule to limit the conversion
to specific rules, e.g. turning slab-like beams into slabs with SC01.`,
		Example: `  # Convert beams that look like slabs
  ifclint convert models/tower-STR.ifc --rule SC01

  # Convert everything flagged into a named file
  ifclint convert --pair tower --out fixed/tower-STR.ifc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd, args, opts.Pair)
			if err != nil {
				return err
			}
			cmdCtx.WithFormat(cmd, opts.Format)
			return runConvert(cmd, cmdCtx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Pair, "pair", "p", "", "Model set, by prefix or number")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Shape rule IDs to convert (default: all enabled rules)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output model (default: <prefix>-converted.ifc next to the model)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing output file")
	_ = cmd.MarkFlagFilename("out", "ifc")

	return cmd
}

// ConversionOutput is the JSON form of one retyped element.
type ConversionOutput struct {
	GlobalID string `json:"global_id"`
	RuleID   string `json:"rule"`
	From     string `json:"from"`
	To       string `json:"to"`
}

func runConvert(cmd *cobra.Command, c *CommandContext, opts *ConvertOptions) error {
	for _, id := range opts.Rules {
		if _, ok := classify.GetByID(strings.ToUpper(strings.TrimSpace(id))); !ok {
			return fmt.Errorf("unknown rule %q\nHint: run 'ifclint rules' to list rule IDs", id)
		}
	}

	out := opts.Out
	if out == "" {
		out = convertedPath(c.Engine.ModelPath(), c.Pair.Prefix)
	}
	if _, err := os.Stat(out); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", out)
	}

	conversions, err := c.Engine.Convert(cmd.Context(), opts.Rules, out)
	if err != nil {
		return err
	}
	renderConversions(c.Renderer, out, conversions)
	return nil
}

// convertedPath places <prefix>-converted.ifc beside the model.
func convertedPath(model, prefix string) string {
	if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(model), filepath.Ext(model))
	}
	return filepath.Join(filepath.Dir(model), prefix+"-converted.ifc")
}

func renderConversions(r *output.Renderer, path string, conversions []engine.Conversion) {
	if r.EffectiveMode() == output.ModeJSON {
		items := make([]ConversionOutput, len(conversions))
		for i, cv := range conversions {
			items[i] = ConversionOutput{cv.GlobalID, cv.RuleID, cv.From, cv.To}
		}
		_ = r.JSON(struct {
			Output      string             `json:"output"`
			Conversions []ConversionOutput `json:"conversions"`
		}{path, items})
		return
	}

	if len(conversions) == 0 {
		r.Warning("no elements matched; wrote an unchanged copy to " + path)
		return
	}
	rows := make([][]string, len(conversions))
	for i, cv := range conversions {
		rows[i] = []string{cv.GlobalID, cv.RuleID, cv.From, cv.To}
	}
	r.Section("Converted elements")
	r.Table([]string{"GlobalId", "Rule", "From", "To"}, rows)
	r.Println("")
	r.Success(fmt.Sprintf("Wrote %s (%d elements retyped)", path, len(conversions)))
}
