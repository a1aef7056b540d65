package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/pkg/classify"
	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Kind    string // Filter by declared kind: beam, slab, column, wall
	Verbose bool   // Show geometry formulas
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the shape rules",
		Long: `List the shape rules used to detect misclassified structural elements.

Each rule applies to one declared category and names the category the
geometry suggests instead. Dimensions are the bounding-box extents
sorted ascending as thickness t, width w and length L.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  ifclint rules

  # Show details for a specific rule
  ifclint rules SC03

  # Rules for slabs with their formulas
  ifclint rules --kind slab -V

  # Output as JSON
  ifclint rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Filter by declared kind: beam, slab, column, wall")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show geometry formulas")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cmdCtx.WithFormat(cmd, opts.Format)
	r := cmdCtx.Renderer

	var rules []classify.RuleDef
	if opts.Kind != "" {
		kind, ok := core.ParseKind(opts.Kind)
		if !ok {
			return fmt.Errorf("unknown kind %q (expected beam, slab, column or wall)", opts.Kind)
		}
		rules = classify.GetBySource(kind)
	} else {
		rules = classify.GetAll()
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	disabled := make(map[string]bool, len(cmdCtx.Cfg.DisabledRules))
	for _, id := range cmdCtx.Cfg.DisabledRules {
		disabled[strings.ToUpper(id)] = true
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listRulesJSON(r, rules, disabled)
	case output.ModeMarkdown:
		listRulesMarkdown(r, rules, disabled, opts.Verbose)
	default:
		listRulesText(r, rules, disabled, opts.Verbose)
	}
	return nil
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cmdCtx.WithFormat(cmd, opts.Format)
	r := cmdCtx.Renderer

	rule, ok := classify.GetByID(strings.ToUpper(ruleID))
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rule.Info())
	case output.ModeMarkdown:
		showRuleMarkdown(r, rule)
	default:
		showRuleText(r, rule)
	}
	return nil
}

func listRulesText(r *output.Renderer, rules []classify.RuleDef, disabled map[string]bool, verbose bool) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Shape Rules (%d)", len(rules))))
	r.Println("")

	currentKind := core.Kind("")
	for _, rule := range rules {
		if rule.Source != currentKind {
			currentKind = rule.Source
			r.Println(styles.Bold.Render("  " + rule.Source.Label()))
		}

		line := fmt.Sprintf("    %s  %s - %s",
			styles.Muted.Render(rule.ID),
			rule.Description,
			getSeverityStyle(styles, rule.Severity).Render(rule.Severity.String()),
		)
		if disabled[rule.ID] {
			line += styles.Muted.Render(" (disabled)")
		}
		r.Println(line)

		if verbose {
			r.Println(styles.Muted.Render("        " + rule.Hint))
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'ifclint rules <rule-id>' for details"))
	r.Println("")
}

func listRulesMarkdown(r *output.Renderer, rules []classify.RuleDef, disabled map[string]bool, verbose bool) {
	r.Println("# Shape Rules")
	r.Println("")

	currentKind := core.Kind("")
	for _, rule := range rules {
		if rule.Source != currentKind {
			currentKind = rule.Source
			r.Println("## " + rule.Source.Label())
			r.Println("")
		}

		suffix := ""
		if disabled[rule.ID] {
			suffix = " *disabled*"
		}
		r.Printf("- **%s** - %s (`%s`)%s\n", rule.ID, rule.Description, rule.Severity.String(), suffix)
		if verbose {
			r.Printf("  `%s`\n", rule.Hint)
		}
	}

	r.Println("")
}

// RuleOutput is one entry of the JSON rules listing.
type RuleOutput struct {
	classify.RuleInfo
	Disabled bool `json:"disabled"`
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []RuleOutput `json:"rules"`
	Count int          `json:"count"`
}

func listRulesJSON(r *output.Renderer, rules []classify.RuleDef, disabled map[string]bool) error {
	out := RulesJSONOutput{Rules: make([]RuleOutput, 0, len(rules)), Count: len(rules)}
	for _, rule := range rules {
		out.Rules = append(out.Rules, RuleOutput{RuleInfo: rule.Info(), Disabled: disabled[rule.ID]})
	}
	return r.JSON(out)
}

func showRuleText(r *output.Renderer, rule classify.RuleDef) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Applies to"), rule.Source.IfcType())
	r.Printf("  %s: %s\n", styles.Bold.Render("Suggests"), rule.Suspected.IfcType())
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), getSeverityStyle(styles, rule.Severity).Render(rule.Severity.String()))
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	r.Println(styles.Bold.Render("Geometry"))
	r.Println("  " + rule.Geometry)
	r.Println(styles.Muted.Render("  " + rule.Hint))
	r.Println("")

	if div := divisorNames(rule.DividesBy); div != "" {
		r.Println(styles.Muted.Render("  Elements with zero " + div + " are skipped."))
		r.Println("")
	}
}

func showRuleMarkdown(r *output.Renderer, rule classify.RuleDef) {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Applies to:** `%s` | **Suggests:** `%s` | **Severity:** `%s`\n\n",
		rule.Source.IfcType(), rule.Suspected.IfcType(), rule.Severity.String())
	r.Println(rule.Description)
	r.Println("")
	r.Println("## Geometry")
	r.Println("")
	r.Println(rule.Geometry)
	r.Println("")
	r.Println("```")
	r.Println(rule.Hint)
	r.Println("```")
	r.Println("")
}

func divisorNames(d classify.Divisor) string {
	var names []string
	if d&classify.DivThickness != 0 {
		names = append(names, "thickness")
	}
	if d&classify.DivWidth != 0 {
		names = append(names, "width")
	}
	return strings.Join(names, " or ")
}

// getSeverityStyle returns the appropriate style for a severity level.
func getSeverityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	default:
		return styles.Info
	}
}
