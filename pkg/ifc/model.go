// Package ifc provides a read-mostly view of an IFC building model stored
// as an ISO 10303-21 file.
//
// A Model indexes the spatial containment, aggregation and typing
// relationships once at load time. After loading, a Model is safe for
// concurrent readers; Retype is the only mutating operation and must not
// run concurrently with readers.
package ifc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/step"
)

// ErrNotIFC is returned when an exchange file does not declare an IFC schema.
var ErrNotIFC = errors.New("not an IFC model")

// Attribute positions shared by every IfcRoot / IfcProduct subtype.
const (
	attrGlobalID        = 0
	attrName            = 2
	attrObjectPlacement = 5
	attrRepresentation  = 6
	attrStoreyElevation = 9
)

// Model is a loaded IFC model.
type Model struct {
	path  string
	file  *step.File
	scale float64
	angle float64

	containedIn  map[int][]int // element -> relating structures, file order
	aggregatedIn map[int]int   // object -> relating object
	typedBy      map[int]int   // object -> relating type
}

// Open reads and indexes the IFC model at path.
func Open(path string) (*Model, error) {
	f, err := step.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := New(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.path = path
	return m, nil
}

// Parse reads an IFC model from r.
func Parse(r io.Reader) (*Model, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	f, err := step.Parse(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return New(f)
}

// New indexes an already parsed exchange file.
func New(f *step.File) (*Model, error) {
	if !strings.HasPrefix(f.Schema(), "IFC") {
		return nil, fmt.Errorf("%w: schema %q", ErrNotIFC, f.Schema())
	}
	m := &Model{
		file:         f,
		containedIn:  make(map[int][]int),
		aggregatedIn: make(map[int]int),
		typedBy:      make(map[int]int),
	}
	for _, e := range f.Entities() {
		switch e.Type {
		case "IFCRELCONTAINEDINSPATIALSTRUCTURE":
			structure, ok := e.Attr(5).RefID()
			if !ok {
				continue
			}
			for _, id := range refs(e.Attr(4)) {
				m.containedIn[id] = append(m.containedIn[id], structure)
			}
		case "IFCRELAGGREGATES":
			parent, ok := e.Attr(4).RefID()
			if !ok {
				continue
			}
			for _, id := range refs(e.Attr(5)) {
				if _, seen := m.aggregatedIn[id]; !seen {
					m.aggregatedIn[id] = parent
				}
			}
		case "IFCRELDEFINESBYTYPE":
			typ, ok := e.Attr(5).RefID()
			if !ok {
				continue
			}
			for _, id := range refs(e.Attr(4)) {
				if _, seen := m.typedBy[id]; !seen {
					m.typedBy[id] = typ
				}
			}
		}
	}
	m.scale = m.unitFactor(lengthUnit)
	m.angle = m.unitFactor(planeAngleUnit)
	return m, nil
}

func refs(v step.Value) []int {
	items, _ := v.List()
	out := make([]int, 0, len(items))
	for _, it := range items {
		if id, ok := it.RefID(); ok {
			out = append(out, id)
		}
	}
	return out
}

// Path returns the file the model was opened from, if any.
func (m *Model) Path() string { return m.path }

// File exposes the underlying exchange structure.
func (m *Model) File() *step.File { return m.file }

// Schema returns the declared schema identifier, e.g. "IFC4".
func (m *Model) Schema() string { return m.file.Schema() }

// LengthScale returns the factor converting model length units to metres.
func (m *Model) LengthScale() float64 { return m.scale }

// AngleScale returns the factor converting model plane angles to radians.
func (m *Model) AngleScale() float64 { return m.angle }

// ProjectName returns the IfcProject name, falling back to the FILE_NAME
// header and finally to the file name without extension.
func (m *Model) ProjectName() string {
	for _, e := range m.file.Entities() {
		if e.Type != "IFCPROJECT" {
			continue
		}
		if s, ok := e.Attr(attrName).Text(); ok && s != "" {
			return s
		}
		if s, ok := e.Attr(5).Text(); ok && s != "" {
			return s
		}
		break
	}
	if rec, ok := m.file.Header.Get("FILE_NAME"); ok && len(rec.Attrs) > 0 {
		if s, ok := rec.Attrs[0].Text(); ok && s != "" {
			return strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
		}
	}
	if m.path != "" {
		base := filepath.Base(m.path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ""
}

// Element returns the element with the given instance name.
func (m *Model) Element(id int) (Element, bool) {
	e, ok := m.file.Entity(id)
	if !ok {
		return Element{}, false
	}
	return Element{m: m, e: e}, true
}

// ByGlobalID finds the entity with the given GlobalId.
func (m *Model) ByGlobalID(guid string) (Element, bool) {
	for _, e := range m.file.Entities() {
		if len(e.Attrs) == 0 || e.Attrs[0].Kind != step.KindString {
			continue
		}
		if e.Attrs[0].Str == guid {
			return Element{m: m, e: e}, true
		}
	}
	return Element{}, false
}

// ElementsByCategory returns all instances of the named entity type and
// its known subtypes, in file order.
func (m *Model) ElementsByCategory(category string) []Element {
	types := map[string]bool{strings.ToUpper(category): true}
	for _, sub := range subtypes[strings.ToUpper(category)] {
		types[sub] = true
	}
	var out []Element
	for _, e := range m.file.Entities() {
		if types[e.Type] {
			out = append(out, Element{m: m, e: e})
		}
	}
	return out
}

// Storey is an IfcBuildingStorey with its elevation in metres.
type Storey struct {
	Element
	Elevation    float64
	HasElevation bool
}

// Storeys returns every building storey in file order.
func (m *Model) Storeys() []Storey {
	els := m.ElementsByCategory("IfcBuildingStorey")
	out := make([]Storey, 0, len(els))
	for _, el := range els {
		s := Storey{Element: el}
		if v, ok := el.e.Attr(attrStoreyElevation).Float(); ok {
			s.Elevation = v * m.scale
			s.HasElevation = true
		}
		out = append(out, s)
	}
	return out
}

// AssignedStorey returns the storey an element is declared on. An element
// contained in an IfcSpace is resolved one level up through the space's
// own containment or aggregation.
func (m *Model) AssignedStorey(el Element) (Element, bool) {
	for _, sid := range m.containedIn[el.ID()] {
		s, ok := m.file.Entity(sid)
		if !ok {
			continue
		}
		if s.Is("IFCBUILDINGSTOREY") {
			return Element{m: m, e: s}, true
		}
		if !s.Is("IFCSPACE") {
			continue
		}
		for _, pid := range m.containedIn[s.ID] {
			if p, ok := m.file.Entity(pid); ok && p.Is("IFCBUILDINGSTOREY") {
				return Element{m: m, e: p}, true
			}
		}
		if pid, ok := m.aggregatedIn[s.ID]; ok {
			if p, ok := m.file.Entity(pid); ok && p.Is("IFCBUILDINGSTOREY") {
				return Element{m: m, e: p}, true
			}
		}
	}
	return Element{}, false
}

// StoreyOf returns the GlobalId of the storey el is declared on. Elements
// from other models have no assignment here.
func (m *Model) StoreyOf(el core.Element) (string, bool) {
	e, ok := el.(Element)
	if !ok || e.m != m {
		return "", false
	}
	s, ok := m.AssignedStorey(e)
	if !ok {
		return "", false
	}
	return s.GlobalID(), true
}

// TypeName returns the name of the element's type object, if any.
func (m *Model) TypeName(el Element) (string, bool) {
	tid, ok := m.typedBy[el.ID()]
	if !ok {
		return "", false
	}
	t, ok := m.file.Entity(tid)
	if !ok {
		return "", false
	}
	return t.Attr(attrName).Text()
}

// CategoryCounts returns the number of instances per canonical entity name.
func (m *Model) CategoryCounts() map[string]int {
	out := make(map[string]int)
	for _, e := range m.file.Entities() {
		out[CanonicalName(e.Type)]++
	}
	return out
}

// SortedCategories returns the keys of counts in name order.
func SortedCategories(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WriteFile writes the (possibly retyped) model to path.
func (m *Model) WriteFile(path string) error {
	if m.path != "" {
		if same, _ := sameFile(m.path, path); same {
			return fmt.Errorf("refusing to overwrite source model %s", path)
		}
	}
	return m.file.WriteFile(path)
}

func sameFile(a, b string) (bool, error) {
	sa, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(sa, sb), nil
}
