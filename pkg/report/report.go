// Package report turns classification and floor findings into titled
// issues plus one run summary, and exports them as a BCF package.
package report

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/ifclint/pkg/classify"
	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/storey"
)

// DefaultAuthor is used when Input.Author is empty.
const DefaultAuthor = "Structural-Checker"

// Topic types written to the BCF package.
const (
	TopicTypeIssue   = "Structural Check"
	TopicTypeSummary = "Summary"
)

// SummaryTitle is the title of the summary issue.
const SummaryTitle = "Summary: Structural check results"

// IssueKind groups issues for counting and filtering.
type IssueKind string

// Issue kinds.
const (
	KindClassMismatch IssueKind = "class-mismatch"
	KindWrongFloor    IssueKind = "wrong-floor"
	KindUnassigned    IssueKind = "unassigned"
	KindFloating      IssueKind = "floating"
)

// Issue is one reportable finding.
type Issue struct {
	Kind        IssueKind        `json:"kind"`
	RuleID      string           `json:"rule_id,omitempty"`
	Severity    core.Severity    `json:"severity"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	GlobalID    string           `json:"global_id"`
	Category    string           `json:"category"`
	Name        string           `json:"name,omitempty"`
	Box         core.BoundingBox `json:"box"`
}

// StoreyCount is the number of wrong-floor elements declared on one storey.
type StoreyCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary aggregates a run.
type Summary struct {
	WrongFloor         int           `json:"wrong_floor"`
	Unassigned         int           `json:"unassigned"`
	Floating           int           `json:"floating"`
	ClassMismatch      int           `json:"class_mismatch"`
	WrongFloorByStorey []StoreyCount `json:"wrong_floor_by_storey"`
}

// Total returns the number of issues, excluding the summary itself.
func (s Summary) Total() int {
	return s.WrongFloor + s.Unassigned + s.Floating + s.ClassMismatch
}

// Text renders the body of the summary issue.
func (s Summary) Text() string {
	var b strings.Builder
	b.WriteString("Structural check summary:\n\n")
	if len(s.WrongFloorByStorey) == 0 {
		b.WriteString("No wrong-floor elements found.\n")
	} else {
		b.WriteString("Wrong-floor elements per assigned storey:\n")
		for _, c := range s.WrongFloorByStorey {
			fmt.Fprintf(&b, "- %s (%s): %d\n", c.Name, c.ID, c.Count)
		}
	}
	b.WriteString("\nTotals:\n")
	fmt.Fprintf(&b, "- Wrong-floor: %d\n", s.WrongFloor)
	fmt.Fprintf(&b, "- Unassigned: %d\n", s.Unassigned)
	fmt.Fprintf(&b, "- Floating: %d\n", s.Floating)
	fmt.Fprintf(&b, "- Class-mismatch candidates: %d", s.ClassMismatch)
	return b.String()
}

// Report is the merged result of one run.
type Report struct {
	Project string  `json:"project"`
	Author  string  `json:"author"`
	Issues  []Issue `json:"issues"`
	Summary Summary `json:"summary"`
}

// Input collects the findings of one run. Storey names are resolved from
// Storeys first and then from ReferenceStoreys.
type Input struct {
	Project          string
	Author           string
	Classification   []core.ClassificationFinding
	Floor            []core.FloorFinding
	Storeys          []storey.Range
	ReferenceStoreys []storey.Range
}

// Build produces one issue per finding, classification findings first,
// and the run summary.
func Build(in Input) *Report {
	author := in.Author
	if author == "" {
		author = DefaultAuthor
	}
	names := newNamer(in.Storeys, in.ReferenceStoreys)
	r := &Report{Project: in.Project, Author: author, Issues: []Issue{}}

	for _, f := range in.Classification {
		r.Issues = append(r.Issues, classIssue(f))
		r.Summary.ClassMismatch++
	}

	byStorey := make(map[string]int)
	for _, f := range in.Floor {
		r.Issues = append(r.Issues, floorIssue(f, names))
		switch f.Issue {
		case core.WrongFloor:
			r.Summary.WrongFloor++
			if i, ok := byStorey[f.Assigned]; ok {
				r.Summary.WrongFloorByStorey[i].Count++
				continue
			}
			byStorey[f.Assigned] = len(r.Summary.WrongFloorByStorey)
			r.Summary.WrongFloorByStorey = append(r.Summary.WrongFloorByStorey, StoreyCount{
				ID: f.Assigned, Name: names.name(f.Assigned), Count: 1,
			})
		case core.Unassigned:
			r.Summary.Unassigned++
		case core.Floating:
			r.Summary.Floating++
		}
	}
	return r
}

func classIssue(f core.ClassificationFinding) Issue {
	el := f.Element
	severity := core.SeverityWarning
	geometry := f.Suspected.Label() + "-like"
	if rule, ok := classify.GetByID(f.RuleID); ok {
		severity = rule.Severity
		geometry = rule.Geometry
	}
	return Issue{
		Kind:     KindClassMismatch,
		RuleID:   f.RuleID,
		Severity: severity,
		Title:    fmt.Sprintf("%s-like %s: %s (%s)", f.Suspected.Label(), f.Source.Label(), el.Category(), el.GlobalID()),
		Description: fmt.Sprintf("%s %s has %s-like geometry (%s; %s). Consider %s.",
			f.Source.Label(), el.GlobalID(), f.Suspected, geometry, f.Box.Dimensions(), f.Suspected.IfcType()),
		GlobalID: el.GlobalID(),
		Category: el.Category(),
		Name:     el.Name(),
		Box:      f.Box,
	}
}

func floorIssue(f core.FloorFinding, names namer) Issue {
	el := f.Element
	is := Issue{
		GlobalID: el.GlobalID(),
		Category: el.Category(),
		Name:     el.Name(),
		Box:      f.Box,
	}
	ref := fmt.Sprintf("%s (%s)", el.Category(), el.GlobalID())
	switch f.Issue {
	case core.Floating:
		is.Kind, is.Severity = KindFloating, core.SeverityError
		is.Title = "Floating element - " + ref
		is.Description = fmt.Sprintf("Element %s is assigned to storey %s but its geometry does not sit within that storey's vertical range.",
			ref, names.label(f.Assigned))
	case core.Unassigned:
		is.Kind, is.Severity = KindUnassigned, core.SeverityWarning
		is.Title = "Unassigned element - " + ref
		is.Description = fmt.Sprintf("Element %s is not assigned to any IfcBuildingStorey.", ref)
		if f.Actual != "" {
			is.Description += fmt.Sprintf(" Geometry suggests storey %s.", names.label(f.Actual))
		} else {
			is.Description += " Its geometry does not overlap any storey."
		}
	default:
		is.Kind, is.Severity = KindWrongFloor, core.SeverityError
		is.Title = "Wrong floor assignment - " + ref
		actual := "no storey"
		if f.Actual != "" {
			actual = names.label(f.Actual)
		}
		is.Description = fmt.Sprintf("Element %s is assigned to %s but geometry overlaps %s.",
			ref, names.label(f.Assigned), actual)
	}
	return is
}

// namer resolves storey GlobalIds to names.
type namer struct {
	primary, secondary map[string]string
}

func newNamer(primary, secondary []storey.Range) namer {
	index := func(rs []storey.Range) map[string]string {
		m := make(map[string]string, len(rs))
		for _, r := range rs {
			m[r.ID] = r.Name
		}
		return m
	}
	return namer{primary: index(primary), secondary: index(secondary)}
}

func (n namer) name(id string) string {
	for _, m := range []map[string]string{n.primary, n.secondary} {
		if name, ok := m[id]; ok {
			if name == "" {
				return "<unnamed>"
			}
			return name
		}
	}
	return "<unknown>"
}

func (n namer) label(id string) string {
	return fmt.Sprintf("%s (%s)", n.name(id), id)
}
