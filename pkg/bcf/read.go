package bcf

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotBCF is returned for archives without a bcf.version entry.
var ErrNotBCF = errors.New("not a BCF archive")

// Open reads the BCF package at name.
func Open(name string) (*Archive, error) {
	r, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()
	return read(&r.Reader)
}

// Read reads a BCF package from r.
func Read(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return read(zr)
}

func read(zr *zip.Reader) (*Archive, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	vf, ok := files["bcf.version"]
	if !ok {
		return nil, ErrNotBCF
	}
	var ver xmlVersion
	if err := decodeXML(vf, &ver); err != nil {
		return nil, err
	}
	a := &Archive{Version: ver.VersionID}

	if pf, ok := files["project.bcfp"]; ok {
		var info xmlProjectInfo
		if err := decodeXML(pf, &info); err != nil {
			return nil, err
		}
		a.Project = Project{ID: info.Project.ProjectID, Name: info.Project.Name}
	}

	// Topics keep archive order.
	for _, f := range zr.File {
		dir, base := path.Split(f.Name)
		if base != "markup.bcf" || dir == "" {
			continue
		}
		t, err := readTopic(f, files, strings.TrimSuffix(dir, "/"))
		if err != nil {
			return nil, err
		}
		a.Topics = append(a.Topics, t)
	}
	return a, nil
}

func readTopic(f *zip.File, files map[string]*zip.File, dir string) (Topic, error) {
	var m xmlMarkup
	if err := decodeXML(f, &m); err != nil {
		return Topic{}, err
	}
	x := m.Topic
	t := Topic{
		GUID:        x.GUID,
		Type:        x.TopicType,
		Status:      x.TopicStatus,
		Title:       x.Title,
		Priority:    x.Priority,
		Labels:      x.Labels,
		Created:     x.CreationDate,
		Author:      x.CreationAuthor,
		Description: x.Description,
	}
	for _, c := range x.Comments {
		cm := Comment{GUID: c.GUID, Date: c.Date, Author: c.Author, Text: c.Comment}
		if c.Viewpoint != nil {
			cm.Viewpoint = c.Viewpoint.GUID
		}
		t.Comments = append(t.Comments, cm)
	}
	for _, ref := range x.Viewpoints {
		vp := Viewpoint{GUID: ref.GUID}
		vf, ok := files[path.Join(dir, ref.Viewpoint)]
		if !ok {
			return Topic{}, fmt.Errorf("bcf: topic %s: missing viewpoint %s", t.GUID, ref.Viewpoint)
		}
		var vi xmlVisualizationInfo
		if err := decodeXML(vf, &vi); err != nil {
			return Topic{}, err
		}
		if vi.Components != nil {
			for _, c := range vi.Components.Selection {
				vp.Selected = append(vp.Selected, c.IfcGUID)
			}
		}
		if c := vi.PerspectiveCamera; c != nil {
			vp.Camera = &Camera{
				Position:    fromPoint(c.CameraViewPoint),
				Direction:   fromPoint(c.CameraDirection),
				Up:          fromPoint(c.CameraUpVector),
				FieldOfView: c.FieldOfView,
				AspectRatio: c.AspectRatio,
			}
		}
		t.Viewpoints = append(t.Viewpoints, vp)
	}
	return t, nil
}

func decodeXML(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("bcf: open %s: %w", f.Name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("bcf: decode %s: %w", f.Name, err)
	}
	return nil
}
