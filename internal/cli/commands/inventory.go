package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/pkg/ifc"
	"github.com/spf13/cobra"
)

// untyped labels elements without a type object.
const untyped = "<no type>"

// InventoryOptions holds options for the inventory command.
type InventoryOptions struct {
	Pair   string // Model set prefix or number
	Format string // Output format
	Entity string // Entity to break down by type and storey
	Type   string // Type name whose instances are counted per storey
}

// NewInventoryCommand creates the inventory command.
func NewInventoryCommand() *cobra.Command {
	opts := &InventoryOptions{}
	cmd := &cobra.Command{
		Use:   "inventory [model.ifc]",
		Short: "Count the elements of a model",
		Long: `Count the entity instances of a model and break one entity down by
type name and by the storey each element is declared on.

Use it to see what a model contains before checking it, or to find
where the instances of one wall type were placed.`,
		Example: `  # Entity counts and the wall breakdown
  ifclint inventory models/tower-STR.ifc

  # Where are the 200mm concrete walls?
  ifclint inventory --type "Basic Wall:Concrete 200"

  # Beams instead of walls, as JSON
  ifclint inventory --entity IfcBeam -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd, args, opts.Pair)
			if err != nil {
				return err
			}
			cmdCtx.WithFormat(cmd, opts.Format)
			return runInventory(cmdCtx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Pair, "pair", "p", "", "Model set, by prefix or number")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVar(&opts.Entity, "entity", "IfcWall", "Entity to break down by type and storey")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Count only instances of this type name per storey")

	return cmd
}

// Count is a labelled number.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Inventory summarises what a model contains.
type Inventory struct {
	Model      string  `json:"model"`
	Schema     string  `json:"schema"`
	Categories []Count `json:"categories"`
	Entity     string  `json:"entity"`
	Type       string  `json:"type,omitempty"`
	ByType     []Count `json:"by_type"`
	ByStorey   []Count `json:"by_storey"`
}

// takeInventory counts entities in m. ByType covers every instance of
// entity; ByStorey only those of typeName when it is set. Storeys are
// listed in elevation order, unassigned elements last.
func takeInventory(m *ifc.Model, entity, typeName string) Inventory {
	inv := Inventory{Model: m.Path(), Schema: m.Schema(), Entity: entity, Type: typeName}

	counts := m.CategoryCounts()
	for _, name := range ifc.SortedCategories(counts) {
		inv.Categories = append(inv.Categories, Count{name, counts[name]})
	}

	byType := make(map[string]int)
	byStorey := make(map[string]int)
	unassigned := 0
	for _, el := range m.ElementsByCategory(entity) {
		name, ok := m.TypeName(el)
		if !ok || name == "" {
			name = untyped
		}
		byType[name]++
		if typeName != "" && name != typeName {
			continue
		}
		if s, ok := m.AssignedStorey(el); ok {
			byStorey[s.GlobalID()]++
		} else {
			unassigned++
		}
	}

	for name, n := range byType {
		inv.ByType = append(inv.ByType, Count{name, n})
	}
	sort.Slice(inv.ByType, func(i, j int) bool {
		if inv.ByType[i].Count != inv.ByType[j].Count {
			return inv.ByType[i].Count > inv.ByType[j].Count
		}
		return inv.ByType[i].Name < inv.ByType[j].Name
	})

	storeys := m.Storeys()
	sort.SliceStable(storeys, func(i, j int) bool { return storeys[i].Elevation < storeys[j].Elevation })
	for _, s := range storeys {
		if n := byStorey[s.GlobalID()]; n > 0 {
			name := s.Name()
			if name == "" {
				name = s.GlobalID()
			}
			inv.ByStorey = append(inv.ByStorey, Count{name, n})
		}
	}
	if unassigned > 0 {
		inv.ByStorey = append(inv.ByStorey, Count{"<unassigned>", unassigned})
	}
	return inv
}

func runInventory(c *CommandContext, opts *InventoryOptions) error {
	m, err := c.Engine.Model()
	if err != nil {
		return err
	}
	inv := takeInventory(m, opts.Entity, opts.Type)
	r := c.Renderer

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(inv)
	}

	r.Header("Inventory: " + inv.Model)
	r.KeyValue("Schema", inv.Schema)
	r.Println("")

	r.Section("Entities")
	r.Table([]string{"Entity", "Count"}, countRows(inv.Categories))
	r.Println("")

	if len(inv.ByType) == 0 {
		r.Warning(fmt.Sprintf("no %s instances found", inv.Entity))
		return nil
	}
	r.Section(inv.Entity + " by type")
	r.Table([]string{"Type", "Count"}, countRows(inv.ByType))
	r.Println("")

	title := inv.Entity + " by storey"
	if inv.Type != "" {
		title = fmt.Sprintf("%s %q by storey", inv.Entity, inv.Type)
	}
	r.Section(title)
	if len(inv.ByStorey) == 0 {
		r.Println(r.Styles().Muted.Render("none"))
		return nil
	}
	r.Table([]string{"Storey", "Count"}, countRows(inv.ByStorey))
	return nil
}

func countRows(counts []Count) [][]string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{strings.TrimSpace(c.Name), fmt.Sprintf("%d", c.Count)}
	}
	return rows
}
