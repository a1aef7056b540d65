package commands

import (
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/internal/pairs"
	"github.com/spf13/cobra"
)

// NewPairsCommand creates the pairs command.
func NewPairsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "List the model sets in the models directory",
		Long: `List the IFC model sets found in the models directory.

Files are grouped by the prefix before their discipline suffix:
<prefix>-STR.ifc, <prefix>-ARCH.ifc and <prefix>-MEP.ifc. The numbers
shown are accepted by --pair.`,
		Example: `  # List model sets
  ifclint pairs

  # In another directory, as JSON
  ifclint pairs --models-dir models -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			cmdCtx.WithFormat(cmd, format)
			return listPairs(cmdCtx)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// PairOutput is the JSON form of a model set.
type PairOutput struct {
	Index int `json:"index"`
	pairs.Pair
	Complete bool `json:"complete"`
}

func listPairs(c *CommandContext) error {
	found, err := checkablePairs(c.Cfg)
	if err != nil {
		return err
	}
	r := c.Renderer

	if r.EffectiveMode() == output.ModeJSON {
		out := make([]PairOutput, len(found))
		for i, p := range found {
			out[i] = PairOutput{Index: i + 1, Pair: p, Complete: p.Complete()}
		}
		return r.JSON(struct {
			ModelsDir string       `json:"models_dir"`
			Pairs     []PairOutput `json:"pairs"`
		}{c.Cfg.ModelsDir, out})
	}

	if len(found) == 0 {
		r.Warning("no IFC models found in " + c.Cfg.ModelsDir)
		return nil
	}

	styles := r.Styles()
	r.Header(fmt.Sprintf("%d model sets in %s", len(found), c.Cfg.ModelsDir))
	rows := make([][]string, len(found))
	for i, p := range found {
		status := styles.Success.Render("complete")
		if !p.Complete() {
			status = styles.Muted.Render("no reference")
		}
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			p.Prefix,
			baseOrDash(p.Model()),
			baseOrDash(p.Architectural),
			baseOrDash(p.MEP),
			status,
		}
	}
	r.Table([]string{"#", "Prefix", "Model", "Reference", "MEP", "Status"}, rows)
	return nil
}

func baseOrDash(path string) string {
	if path == "" {
		return "-"
	}
	return filepath.Base(path)
}
