package report

import (
	"time"

	"github.com/leapstack-labs/ifclint/pkg/bcf"
)

// Archive converts the report to a BCF package: one topic per issue with
// a viewpoint on the element, then the summary topic without a viewpoint.
func (r *Report) Archive(now time.Time) *bcf.Archive {
	a := bcf.NewArchive(r.Project)
	for _, is := range r.Issues {
		t := a.AddTopic(is.Title, is.Description, r.Author, TopicTypeIssue, now)
		t.Priority = is.Severity.Priority()
		label := is.RuleID
		if label == "" {
			label = string(is.Kind)
		}
		t.Labels = []string{label}
		t.AddViewpoint(bcf.CameraFor(is.Box), is.GlobalID)
	}
	sum := a.AddTopic(SummaryTitle, r.Summary.Text(), r.Author, TopicTypeSummary, now)
	sum.Priority = "Low"
	return a
}

// WriteBCF writes the report as a .bcfzip file.
func (r *Report) WriteBCF(path string, now time.Time) error {
	return bcf.WriteFile(path, r.Archive(now))
}
