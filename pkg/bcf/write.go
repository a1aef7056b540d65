package bcf

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
)

// Write serialises the archive as a BCF zip to w.
func Write(w io.Writer, a *Archive) error {
	zw := zip.NewWriter(w)
	if err := writeArchive(zw, a); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// WriteFile writes the archive to path, replacing any existing file.
func WriteFile(name string, a *Archive) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(name)
		}
	}()
	return Write(f, a)
}

func writeArchive(zw *zip.Writer, a *Archive) error {
	version := a.Version
	if version == "" {
		version = Version
	}
	if err := writeXML(zw, "bcf.version", xmlVersion{VersionID: version, DetailedVersion: version}); err != nil {
		return err
	}
	if a.Project.ID == "" {
		return errors.New("bcf: project id is required")
	}
	if err := writeXML(zw, "project.bcfp", xmlProjectInfo{
		Project: xmlProject{ProjectID: a.Project.ID, Name: a.Project.Name},
	}); err != nil {
		return err
	}
	if err := writeXML(zw, "extensions.xml", xmlExtensions{
		TopicTypes:    a.TopicTypes(),
		TopicStatuses: DefaultStatuses,
		Priorities:    DefaultPriorities,
		TopicLabels:   distinctLabels(a.Topics),
		Users:         a.Authors(),
	}); err != nil {
		return err
	}

	seen := make(map[string]bool, len(a.Topics))
	for i := range a.Topics {
		t := &a.Topics[i]
		if t.GUID == "" {
			return fmt.Errorf("bcf: topic %d %q has no guid", i, t.Title)
		}
		if seen[t.GUID] {
			return fmt.Errorf("bcf: duplicate topic guid %s", t.GUID)
		}
		seen[t.GUID] = true
		if err := writeTopic(zw, t); err != nil {
			return err
		}
	}
	return nil
}

func writeTopic(zw *zip.Writer, t *Topic) error {
	m := xmlMarkup{Topic: xmlTopic{
		GUID:           t.GUID,
		TopicType:      t.Type,
		TopicStatus:    t.Status,
		Title:          t.Title,
		Priority:       t.Priority,
		Labels:         t.Labels,
		CreationDate:   t.Created,
		CreationAuthor: t.Author,
		Description:    t.Description,
	}}
	for _, c := range t.Comments {
		xc := xmlComment{GUID: c.GUID, Date: c.Date, Author: c.Author, Comment: c.Text}
		if c.Viewpoint != "" {
			xc.Viewpoint = &xmlRef{GUID: c.Viewpoint}
		}
		m.Topic.Comments = append(m.Topic.Comments, xc)
	}
	for _, vp := range t.Viewpoints {
		m.Topic.Viewpoints = append(m.Topic.Viewpoints, xmlViewPoint{GUID: vp.GUID, Viewpoint: vp.GUID + ".bcfv"})
	}
	if err := writeXML(zw, path.Join(t.GUID, "markup.bcf"), m); err != nil {
		return err
	}

	for _, vp := range t.Viewpoints {
		vi := xmlVisualizationInfo{GUID: vp.GUID}
		if len(vp.Selected) > 0 {
			vi.Components = &xmlComponents{Visibility: xmlVisibility{DefaultVisibility: true}}
			for _, g := range vp.Selected {
				vi.Components.Selection = append(vi.Components.Selection, xmlComponent{IfcGUID: g})
			}
		}
		if c := vp.Camera; c != nil {
			vi.PerspectiveCamera = &xmlPerspectiveCamera{
				CameraViewPoint: toPoint(c.Position),
				CameraDirection: toPoint(c.Direction),
				CameraUpVector:  toPoint(c.Up),
				FieldOfView:     c.FieldOfView,
				AspectRatio:     c.AspectRatio,
			}
		}
		if err := writeXML(zw, path.Join(t.GUID, vp.GUID+".bcfv"), vi); err != nil {
			return err
		}
	}
	return nil
}

func writeXML(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("bcf: create %s: %w", name, err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("bcf: write %s: %w", name, err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("bcf: encode %s: %w", name, err)
	}
	return enc.Close()
}

func distinctLabels(topics []Topic) []string {
	var all []string
	for _, t := range topics {
		all = append(all, t.Labels...)
	}
	return distinct(len(all), func(i int) string { return all[i] })
}
