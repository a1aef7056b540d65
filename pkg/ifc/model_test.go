package ifc

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/testutil"
	"github.com/leapstack-labs/ifclint/pkg/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *testutil.IFCBuilder {
	return testutil.NewIFC().
		Storey("storey-L0", "Level 0", 0).
		Storey("storey-L1", "Level 1", 3).
		Space("space-101", "Room 101", "storey-L1", false).
		Space("space-102", "Room 102", "storey-L1", true).
		Box("IfcBeam", "beam-1", "B1", [3]float64{0, 0, 2.7}, [3]float64{5, 0.2, 3}, "storey-L0").
		Box("IfcBeamStandardCase", "beam-2", "", [3]float64{0, 0, 2.7}, [3]float64{5, 0.2, 3}, "space-101").
		Box("IfcSlab", "slab-1", "S1", [3]float64{0, 0, 2.8}, [3]float64{6, 6, 3}, "space-102").
		Typed("IfcWall", "wall-1", "Basic Wall:Wall_200Concrete", [3]float64{0, 0, 0}, [3]float64{5, 0.2, 3}, "storey-L0").
		NoGeometry("IfcColumn", "col-1", "")
}

func load(t *testing.T, b *testutil.IFCBuilder) *Model {
	t.Helper()
	m, err := Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	return m
}

func guids(els []Element) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.GlobalID()
	}
	return out
}

func TestElementsByCategory(t *testing.T) {
	m := load(t, fixture())

	assert.Equal(t, []string{"beam-1", "beam-2"}, guids(m.ElementsByCategory("IfcBeam")))
	assert.Equal(t, []string{"beam-2"}, guids(m.ElementsByCategory("IFCBEAMSTANDARDCASE")))
	assert.Equal(t, []string{"slab-1"}, guids(m.ElementsByCategory("IfcSlab")))
	assert.Empty(t, m.ElementsByCategory("IfcDoor"))

	beams := m.ElementsByCategory("IfcBeam")
	assert.Equal(t, "IfcBeam", beams[0].Category())
	assert.Equal(t, "IfcBeamStandardCase", beams[1].Category())
	assert.Equal(t, "B1", beams[0].Name())
	assert.Equal(t, "", beams[1].Name())
	assert.Equal(t, "B1 (beam-1)", beams[0].Label())
	assert.Equal(t, "beam-2", beams[1].Label())
}

func TestStoreys(t *testing.T) {
	m := load(t, fixture())
	st := m.Storeys()
	require.Len(t, st, 2)
	assert.Equal(t, "storey-L0", st[0].GlobalID())
	assert.Equal(t, "Level 1", st[1].Name())
	assert.True(t, st[1].HasElevation)
	assert.InDelta(t, 3.0, st[1].Elevation, 1e-9)
}

func TestStoreys_MillimetreElevation(t *testing.T) {
	m := load(t, testutil.NewIFC().Millimetres().
		Storey("a", "A", 3.2).
		StoreyWithoutElevation("b", "B"))

	assert.InDelta(t, 0.001, m.LengthScale(), 1e-12)
	st := m.Storeys()
	require.Len(t, st, 2)
	assert.InDelta(t, 3.2, st[0].Elevation, 1e-9)
	assert.False(t, st[1].HasElevation)
	assert.Zero(t, st[1].Elevation)
}

func TestAssignedStorey(t *testing.T) {
	m := load(t, fixture())

	tests := []struct {
		guid   string
		want   string
		wantOK bool
	}{
		{"beam-1", "storey-L0", true},
		{"beam-2", "storey-L1", true}, // contained in a space contained in the storey
		{"slab-1", "storey-L1", true}, // contained in a space aggregated by the storey
		{"col-1", "", false},
	}
	all := append(m.ElementsByCategory("IfcBeam"), m.ElementsByCategory("IfcSlab")...)
	all = append(all, m.ElementsByCategory("IfcColumn")...)
	byGUID := map[string]Element{}
	for _, el := range all {
		byGUID[el.GlobalID()] = el
	}
	for _, tt := range tests {
		t.Run(tt.guid, func(t *testing.T) {
			st, ok := m.AssignedStorey(byGUID[tt.guid])
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, st.GlobalID())
			}
		})
	}
}

func TestStoreyOf(t *testing.T) {
	m := load(t, fixture())
	other := load(t, fixture())

	beam := m.ElementsByCategory("IfcBeam")[0]
	id, ok := m.StoreyOf(beam)
	require.True(t, ok)
	assert.Equal(t, "storey-L0", id)

	_, ok = m.StoreyOf(other.ElementsByCategory("IfcBeam")[0])
	assert.False(t, ok)
}

func TestTypeName(t *testing.T) {
	m := load(t, fixture())
	walls := m.ElementsByCategory("IfcWall")
	require.Len(t, walls, 1)
	name, ok := m.TypeName(walls[0])
	require.True(t, ok)
	assert.Equal(t, "Basic Wall:Wall_200Concrete", name)

	_, ok = m.TypeName(m.ElementsByCategory("IfcSlab")[0])
	assert.False(t, ok)
}

func TestProjectNameAndSchema(t *testing.T) {
	b := fixture()
	b.Project = "Tower"
	m := load(t, b)
	assert.Equal(t, "Tower", m.ProjectName())
	assert.Equal(t, "IFC4", m.Schema())
}

func TestLengthScale_ConversionBasedUnit(t *testing.T) {
	src := `ISO-10303-21;
HEADER;
FILE_SCHEMA(('IFC2X3'));
ENDSEC;
DATA;
#1=IFCSIUNIT(*,.LENGTHUNIT.,$,.METRE.);
#2=IFCMEASUREWITHUNIT(IFCLENGTHMEASURE(0.3048),#1);
#3=IFCDIMENSIONALEXPONENTS(1,0,0,0,0,0,0);
#4=IFCCONVERSIONBASEDUNIT(#3,.LENGTHUNIT.,'FOOT',#2);
#5=IFCUNITASSIGNMENT((#4));
#6=IFCPROJECT('p',$,'Imperial',$,$,$,$,$,#5);
ENDSEC;
END-ISO-10303-21;
`
	m, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.InDelta(t, 0.3048, m.LengthScale(), 1e-12)
}

func TestLengthScale_ComplexSIUnit(t *testing.T) {
	src := `ISO-10303-21;
HEADER;
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=(IFCNAMEDUNIT(*,.LENGTHUNIT.)IFCSIUNIT(.CENTI.,.METRE.));
#2=IFCUNITASSIGNMENT((#1));
ENDSEC;
END-ISO-10303-21;
`
	m, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.InDelta(t, 0.01, m.LengthScale(), 1e-12)
}

func TestNew_NotIFC(t *testing.T) {
	src := "ISO-10303-21;\nHEADER;\nFILE_SCHEMA(('AP214'));\nENDSEC;\nDATA;\nENDSEC;\nEND-ISO-10303-21;\n"
	_, err := Parse(strings.NewReader(src))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotIFC))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.ifc"))
	assert.Error(t, err)
}

func TestRetype(t *testing.T) {
	dir := t.TempDir()
	path := fixture().WriteFile(t, dir, "tower-STR.ifc")
	m, err := Open(path)
	require.NoError(t, err)

	beam := m.ElementsByCategory("IfcBeam")[0]
	storeyBefore, _ := m.AssignedStorey(beam)
	require.NoError(t, m.Retype(beam, "IfcSlab"))

	assert.Equal(t, "IfcSlab", beam.Category())
	assert.Equal(t, "beam-1", beam.GlobalID())
	assert.Equal(t, "B1", beam.Name())
	assert.Equal(t, step.Enum("FLOOR").String(), beam.Entity().Attr(8).String())
	storeyAfter, ok := m.AssignedStorey(beam)
	require.True(t, ok)
	assert.Equal(t, storeyBefore.GlobalID(), storeyAfter.GlobalID())
	assert.Len(t, m.ElementsByCategory("IfcSlab"), 2)

	unnamed := m.ElementsByCategory("IfcBeam")[0]
	require.NoError(t, m.Retype(unnamed, "IfcColumn"))
	assert.Equal(t, "ConvertedColumn", unnamed.Name())

	assert.Error(t, m.Retype(unnamed, "IfcDoor"))
	assert.Error(t, m.WriteFile(path), "must not overwrite the source")

	out := filepath.Join(dir, "converted.ifc")
	require.NoError(t, m.WriteFile(out))
	back, err := Open(out)
	require.NoError(t, err)
	assert.Len(t, back.ElementsByCategory("IfcSlab"), 2)
	assert.Empty(t, back.ElementsByCategory("IfcBeam"))
}

func TestRetype_IFC2X3(t *testing.T) {
	b := fixture()
	b.Schema = "IFC2X3"
	m := load(t, b)

	slab := m.ElementsByCategory("IfcSlab")[0]
	require.NoError(t, m.Retype(slab, "IfcBeam"))
	assert.Len(t, slab.Entity().Attrs, 8)

	beam := m.ElementsByCategory("IfcBeam")[0]
	require.NoError(t, m.Retype(beam, "IfcSlab"))
	assert.Len(t, beam.Entity().Attrs, 9)
}
