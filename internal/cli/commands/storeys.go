package commands

import (
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/internal/engine"
	"github.com/leapstack-labs/ifclint/pkg/storey"
	"github.com/spf13/cobra"
)

// NewStoreysCommand creates the storeys command.
func NewStoreysCommand() *cobra.Command {
	var pair, format string
	cmd := &cobra.Command{
		Use:   "storeys [model.ifc]",
		Short: "List the building storeys of a model",
		Long: `List the building storeys of a structural model sorted by elevation,
with the vertical range each storey covers during the check.

A storey's range ends at the next storey's elevation; the top storey
extends by --storey-ceiling.`,
		Example: `  # Storeys of a specific model
  ifclint storeys models/tower-STR.ifc

  # As JSON
  ifclint storeys --pair tower -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd, args, pair)
			if err != nil {
				return err
			}
			cmdCtx.WithFormat(cmd, format)
			return listStoreys(cmdCtx)
		},
	}

	cmd.Flags().StringVarP(&pair, "pair", "p", "", "Model set, by prefix or number")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// StoreyOutput is the JSON form of a storey range.
type StoreyOutput struct {
	Index     int     `json:"index"`
	GlobalID  string  `json:"global_id"`
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"`
	ZMax      float64 `json:"z_max"`
}

func toStoreyOutputs(ranges []storey.Range) []StoreyOutput {
	out := make([]StoreyOutput, len(ranges))
	for i, rng := range ranges {
		out[i] = StoreyOutput{Index: i + 1, GlobalID: rng.ID, Name: rng.Name, Elevation: rng.ZMin, ZMax: rng.ZMax}
	}
	return out
}

func storeyOutputs(res *engine.Result) []StoreyOutput {
	return toStoreyOutputs(res.Storeys)
}

func listStoreys(c *CommandContext) error {
	m, err := c.Engine.Model()
	if err != nil {
		return err
	}
	storeys := toStoreyOutputs(c.Engine.StoreyIndex(m).Ranges())
	r := c.Renderer

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(struct {
			Model   string         `json:"model"`
			Storeys []StoreyOutput `json:"storeys"`
		}{c.Engine.ModelPath(), storeys})
	}

	if len(storeys) == 0 {
		r.Warning("no IfcBuildingStorey entities found in " + filepath.Base(c.Engine.ModelPath()))
		return nil
	}

	r.Header(fmt.Sprintf("%d storeys in %s", len(storeys), filepath.Base(c.Engine.ModelPath())))
	rows := make([][]string, len(storeys))
	for i, s := range storeys {
		name := s.Name
		if name == "" {
			name = "<unnamed>"
		}
		rows[i] = []string{
			fmt.Sprintf("%d", s.Index),
			s.GlobalID,
			name,
			fmt.Sprintf("%.3f", s.Elevation),
			fmt.Sprintf("%.3f", s.ZMax),
		}
	}
	r.Table([]string{"Index", "GlobalId", "Name", "Elevation", "Range top"}, rows)
	return nil
}
