package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/ifclint/internal/cli/output"
	"github.com/leapstack-labs/ifclint/pkg/bcf"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// IssuesOptions holds options for the issues command.
type IssuesOptions struct {
	Format string // text, markdown, json or yaml
	Label  string // Only topics carrying this label
}

// NewIssuesCommand creates the issues command.
func NewIssuesCommand() *cobra.Command {
	opts := &IssuesOptions{}
	cmd := &cobra.Command{
		Use:   "issues [report.bcfzip]",
		Short: "List the topics of a BCF report",
		Long: `Read a BCF package and list its topics with the elements they select.

Without an argument the report configured for 'ifclint check' is read.`,
		Example: `  # Topics of the last check
  ifclint issues

  # Only wrong-floor issues of another report, as YAML
  ifclint issues out/tower.bcfzip --label wrong-floor -f yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssues(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")
	cmd.Flags().StringVar(&opts.Label, "label", "", "Only list topics with this label")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// TopicOutput is the JSON and YAML form of a BCF topic.
type TopicOutput struct {
	GUID        string    `json:"guid" yaml:"guid"`
	Type        string    `json:"type" yaml:"type"`
	Status      string    `json:"status" yaml:"status"`
	Priority    string    `json:"priority,omitempty" yaml:"priority,omitempty"`
	Title       string    `json:"title" yaml:"title"`
	Labels      []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Author      string    `json:"author" yaml:"author"`
	Created     time.Time `json:"created" yaml:"created"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Elements    []string  `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// IssuesOutput is the JSON and YAML form of a BCF package.
type IssuesOutput struct {
	File    string        `json:"file" yaml:"file"`
	Version string        `json:"version" yaml:"version"`
	Project string        `json:"project" yaml:"project"`
	Topics  []TopicOutput `json:"topics" yaml:"topics"`
}

func runIssues(cmd *cobra.Command, args []string, opts *IssuesOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	path := cmdCtx.Cfg.Report
	if len(args) > 0 {
		path = args[0]
	}

	archive, err := bcf.Open(path)
	if err != nil {
		return fmt.Errorf("reading BCF report: %w", err)
	}
	out := issuesOutput(path, archive, opts.Label)

	if strings.EqualFold(opts.Format, "yaml") {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}

	cmdCtx.WithFormat(cmd, opts.Format)
	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	renderIssues(r, out)
	return nil
}

func issuesOutput(path string, a *bcf.Archive, label string) IssuesOutput {
	out := IssuesOutput{File: path, Version: a.Version, Project: a.Project.Name, Topics: []TopicOutput{}}
	for _, t := range a.Topics {
		if label != "" && !hasLabel(t.Labels, label) {
			continue
		}
		var elements []string
		for _, vp := range t.Viewpoints {
			elements = append(elements, vp.Selected...)
		}
		out.Topics = append(out.Topics, TopicOutput{
			GUID:        t.GUID,
			Type:        t.Type,
			Status:      t.Status,
			Priority:    t.Priority,
			Title:       t.Title,
			Labels:      t.Labels,
			Author:      t.Author,
			Created:     t.Created,
			Description: t.Description,
			Elements:    elements,
		})
	}
	return out
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if strings.EqualFold(l, want) {
			return true
		}
	}
	return false
}

func renderIssues(r *output.Renderer, out IssuesOutput) {
	styles := r.Styles()
	r.Header("BCF report: " + out.File)
	r.KeyValue("Project", out.Project)
	r.KeyValue("Version", out.Version)
	r.KeyValue("Topics", len(out.Topics))
	r.Println("")

	if len(out.Topics) == 0 {
		r.Println(styles.Muted.Render("no topics"))
		return
	}

	rows := make([][]string, len(out.Topics))
	for i, t := range out.Topics {
		rows[i] = []string{
			t.Type,
			t.Priority,
			t.Title,
			strings.Join(t.Elements, ", "),
		}
	}
	r.Table([]string{"Type", "Priority", "Title", "Elements"}, rows)
}
