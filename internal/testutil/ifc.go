package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// IFCBuilder assembles small IFC models as STEP text for tests.
// Coordinates and elevations are given in metres and written in the
// builder's length unit.
type IFCBuilder struct {
	Schema  string
	Project string
	// Prefix is the SI prefix of the length unit, e.g. "MILLI"; empty for metres.
	Prefix string

	storeys  []storeyDef
	spaces   []spaceDef
	elements []elementDef
	extra    []string
}

type storeyDef struct {
	guid, name string
	elevation  *float64
}

type spaceDef struct {
	guid, name, storey string
	aggregated         bool
}

type elementDef struct {
	category, guid, name string
	min, max             [3]float64
	container            string
	typeName             string
	noGeometry           bool
}

// NewIFC returns a builder for an IFC4 model in metres.
func NewIFC() *IFCBuilder {
	return &IFCBuilder{Schema: "IFC4", Project: "Test Project"}
}

// Millimetres switches the length unit to millimetres.
func (b *IFCBuilder) Millimetres() *IFCBuilder {
	b.Prefix = "MILLI"
	return b
}

// Storey adds a building storey.
func (b *IFCBuilder) Storey(guid, name string, elevation float64) *IFCBuilder {
	b.storeys = append(b.storeys, storeyDef{guid: guid, name: name, elevation: &elevation})
	return b
}

// StoreyWithoutElevation adds a storey whose Elevation is unset.
func (b *IFCBuilder) StoreyWithoutElevation(guid, name string) *IFCBuilder {
	b.storeys = append(b.storeys, storeyDef{guid: guid, name: name})
	return b
}

// Space adds an IfcSpace under a storey, linked by containment or, when
// aggregated is set, by IfcRelAggregates.
func (b *IFCBuilder) Space(guid, name, storey string, aggregated bool) *IFCBuilder {
	b.spaces = append(b.spaces, spaceDef{guid: guid, name: name, storey: storey, aggregated: aggregated})
	return b
}

// Box adds an element with extruded rectangle geometry spanning min..max,
// contained in the storey or space with GlobalId container ("" for none).
func (b *IFCBuilder) Box(category, guid, name string, min, max [3]float64, container string) *IFCBuilder {
	b.elements = append(b.elements, elementDef{category: category, guid: guid, name: name, min: min, max: max, container: container})
	return b
}

// Typed adds a boxed element that is also linked to a type object.
func (b *IFCBuilder) Typed(category, guid, typeName string, min, max [3]float64, container string) *IFCBuilder {
	b.elements = append(b.elements, elementDef{category: category, guid: guid, min: min, max: max, container: container, typeName: typeName})
	return b
}

// NoGeometry adds an element without a representation.
func (b *IFCBuilder) NoGeometry(category, guid, container string) *IFCBuilder {
	b.elements = append(b.elements, elementDef{category: category, guid: guid, container: container, noGeometry: true})
	return b
}

// Raw appends data-section lines verbatim. Instance names must start at 1000.
func (b *IFCBuilder) Raw(lines ...string) *IFCBuilder {
	b.extra = append(b.extra, lines...)
	return b
}

func (b *IFCBuilder) scale() float64 {
	if b.Prefix == "MILLI" {
		return 1000
	}
	return 1
}

func (b *IFCBuilder) real(v float64) string {
	s := strconv.FormatFloat(v*b.scale(), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += "."
	}
	return s
}

func (b *IFCBuilder) point(p [3]float64) string {
	return fmt.Sprintf("(%s,%s,%s)", b.real(p[0]), b.real(p[1]), b.real(p[2]))
}

// String renders the model.
func (b *IFCBuilder) String() string {
	var lines []string
	next := 1
	add := func(format string, args ...any) int {
		id := next
		next++
		lines = append(lines, fmt.Sprintf("#%d=", id)+fmt.Sprintf(format, args...)+";")
		return id
	}
	relSeq := 0
	relGUID := func() string {
		relSeq++
		return fmt.Sprintf("3rel%018d", relSeq)
	}

	prefix := "$"
	if b.Prefix != "" {
		prefix = "." + b.Prefix + "."
	}
	unit := add("IFCSIUNIT(*,.LENGTHUNIT.,%s,.METRE.)", prefix)
	units := add("IFCUNITASSIGNMENT((#%d))", unit)
	origin := add("IFCCARTESIANPOINT((0.,0.,0.))")
	zAxis := add("IFCDIRECTION((0.,0.,1.))")
	world := add("IFCAXIS2PLACEMENT3D(#%d,$,$)", origin)
	ctx := add("IFCGEOMETRICREPRESENTATIONCONTEXT($,'Model',3,1.E-05,#%d,$)", world)
	project := add("IFCPROJECT('0proj00000000000000000',$,'%s',$,$,$,$,(#%d),#%d)", b.Project, ctx, units)
	worldPlacement := add("IFCLOCALPLACEMENT($,#%d)", world)

	byGUID := map[string]int{}
	storeyIDs := make([]int, 0, len(b.storeys))
	for _, s := range b.storeys {
		elev := "$"
		if s.elevation != nil {
			elev = b.real(*s.elevation)
		}
		id := add("IFCBUILDINGSTOREY('%s',$,'%s',$,$,#%d,$,$,.ELEMENT.,%s)", s.guid, s.name, worldPlacement, elev)
		byGUID[s.guid] = id
		storeyIDs = append(storeyIDs, id)
	}
	if len(storeyIDs) > 0 {
		add("IFCRELAGGREGATES('%s',$,$,$,#%d,%s)", relGUID(), project, refList(storeyIDs))
	}
	for _, sp := range b.spaces {
		id := add("IFCSPACE('%s',$,'%s',$,$,#%d,$,$,.ELEMENT.,.INTERNAL.,$)", sp.guid, sp.name, worldPlacement)
		byGUID[sp.guid] = id
		parent := byGUID[sp.storey]
		if sp.aggregated {
			add("IFCRELAGGREGATES('%s',$,$,$,#%d,(#%d))", relGUID(), parent, id)
		} else {
			add("IFCRELCONTAINEDINSPATIALSTRUCTURE('%s',$,$,$,(#%d),#%d)", relGUID(), id, parent)
		}
	}

	contained := map[int][]int{}
	var containerOrder []int
	typed := map[string][]int{}
	var typeOrder []string
	typeCategory := map[string]string{}
	for _, el := range b.elements {
		placement, shape := "$", "$"
		if !el.noGeometry {
			loc := add("IFCCARTESIANPOINT(%s)", b.point(el.min))
			place := add("IFCAXIS2PLACEMENT3D(#%d,$,$)", loc)
			lp := add("IFCLOCALPLACEMENT(#%d,#%d)", worldPlacement, place)
			dx, dy, dz := el.max[0]-el.min[0], el.max[1]-el.min[1], el.max[2]-el.min[2]
			c2 := add("IFCCARTESIANPOINT((%s,%s))", b.real(dx/2), b.real(dy/2))
			p2 := add("IFCAXIS2PLACEMENT2D(#%d,$)", c2)
			prof := add("IFCRECTANGLEPROFILEDEF(.AREA.,$,#%d,%s,%s)", p2, b.real(dx), b.real(dy))
			solid := add("IFCEXTRUDEDAREASOLID(#%d,#%d,#%d,%s)", prof, world, zAxis, b.real(dz))
			rep := add("IFCSHAPEREPRESENTATION(#%d,'Body','SweptSolid',(#%d))", ctx, solid)
			pds := add("IFCPRODUCTDEFINITIONSHAPE($,$,(#%d))", rep)
			placement, shape = fmt.Sprintf("#%d", lp), fmt.Sprintf("#%d", pds)
		}
		name := "$"
		if el.name != "" {
			name = "'" + el.name + "'"
		}
		tail := ",$"
		if b.Schema == "IFC2X3" && strings.ToUpper(el.category) != "IFCSLAB" {
			tail = ""
		}
		id := add("%s('%s',$,%s,$,$,%s,%s,$%s)", strings.ToUpper(el.category), el.guid, name, placement, shape, tail)
		if el.container != "" {
			cid := byGUID[el.container]
			if _, seen := contained[cid]; !seen {
				containerOrder = append(containerOrder, cid)
			}
			contained[cid] = append(contained[cid], id)
		}
		if el.typeName != "" {
			if _, seen := typed[el.typeName]; !seen {
				typeOrder = append(typeOrder, el.typeName)
				typeCategory[el.typeName] = el.category
			}
			typed[el.typeName] = append(typed[el.typeName], id)
		}
	}
	for _, cid := range containerOrder {
		add("IFCRELCONTAINEDINSPATIALSTRUCTURE('%s',$,$,$,%s,#%d)", relGUID(), refList(contained[cid]), cid)
	}
	for _, tn := range typeOrder {
		tid := add("%sTYPE('%s',$,'%s',$,$,$,$,$,$,.NOTDEFINED.)", strings.ToUpper(typeCategory[tn]), relGUID(), tn)
		add("IFCRELDEFINESBYTYPE('%s',$,$,$,%s,#%d)", relGUID(), refList(typed[tn]), tid)
	}
	lines = append(lines, b.extra...)

	var sb strings.Builder
	sb.WriteString("ISO-10303-21;\nHEADER;\n")
	sb.WriteString("FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');\n")
	sb.WriteString("FILE_NAME('fixture.ifc','2025-01-01T00:00:00',(''),(''),'ifclint','testutil','');\n")
	fmt.Fprintf(&sb, "FILE_SCHEMA(('%s'));\nENDSEC;\nDATA;\n", b.Schema)
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	sb.WriteString("ENDSEC;\nEND-ISO-10303-21;\n")
	return sb.String()
}

// WriteFile writes the model into dir and returns its path.
func (b *IFCBuilder) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

func refList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
