package geom

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/leapstack-labs/ifclint/internal/testutil"
	"github.com/leapstack-labs/ifclint/pkg/ifc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapes = `ISO-10303-21;
HEADER;
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCPROJECT('p',$,'P',$,$,$,$,$,#2);
#2=IFCUNITASSIGNMENT((#3));
#3=IFCSIUNIT(*,.LENGTHUNIT.,$,.METRE.);
#10=IFCCARTESIANPOINT((10.,0.,3.));
#11=IFCAXIS2PLACEMENT3D(#10,$,$);
#12=IFCLOCALPLACEMENT($,#11);
#13=IFCCARTESIANPOINT((0.,0.,0.));
#14=IFCDIRECTION((0.,0.,1.));
#15=IFCDIRECTION((0.,1.,0.));
#16=IFCAXIS2PLACEMENT3D(#13,#14,#15);
#17=IFCLOCALPLACEMENT(#12,#16);
#20=IFCCARTESIANPOINT((1.,0.5));
#21=IFCAXIS2PLACEMENT2D(#20,$);
#22=IFCRECTANGLEPROFILEDEF(.AREA.,$,#21,2.,1.);
#23=IFCAXIS2PLACEMENT3D(#13,$,$);
#24=IFCEXTRUDEDAREASOLID(#22,#23,#14,0.5);
#25=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#24));
#26=IFCPRODUCTDEFINITIONSHAPE($,$,(#25));
#27=IFCBEAM('rotated',$,$,$,$,#17,#26,$,$);
#30=IFCCIRCLEPROFILEDEF(.AREA.,$,$,0.25);
#31=IFCEXTRUDEDAREASOLID(#30,#23,#14,3.);
#32=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#31));
#33=IFCPRODUCTDEFINITIONSHAPE($,$,(#32));
#34=IFCLOCALPLACEMENT($,#23);
#35=IFCCOLUMN('round',$,$,$,$,#34,#33,$,$);
#40=IFCCARTESIANPOINTLIST3D(((0.,0.,0.),(1.,0.,0.),(1.,1.,0.),(0.,1.,1.)));
#41=IFCTRIANGULATEDFACESET(#40,$,.F.,((1,2,3),(1,3,4)),$);
#42=IFCSHAPEREPRESENTATION($,'Body','Tessellation',(#41));
#43=IFCREPRESENTATIONMAP(#23,#42);
#44=IFCCARTESIANPOINT((5.,0.,0.));
#45=IFCCARTESIANTRANSFORMATIONOPERATOR3D($,$,#44,2.,$);
#46=IFCMAPPEDITEM(#43,#45);
#47=IFCSHAPEREPRESENTATION($,'Body','MappedRepresentation',(#46));
#48=IFCPRODUCTDEFINITIONSHAPE($,$,(#47));
#49=IFCSLAB('mapped',$,$,$,$,#34,#48,$,$);
#50=IFCPLANE(#23);
#51=IFCHALFSPACESOLID(#50,.F.);
#52=IFCBOOLEANCLIPPINGRESULT(.DIFFERENCE.,#24,#51);
#53=IFCSHAPEREPRESENTATION($,'Body','Clipping',(#52));
#54=IFCPRODUCTDEFINITIONSHAPE($,$,(#53));
#55=IFCWALL('clipped',$,$,$,$,#34,#54,$,$);
#60=IFCCARTESIANPOINT((0.,0.,0.));
#61=IFCCARTESIANPOINT((4.,0.,0.));
#62=IFCCARTESIANPOINT((4.,3.,0.));
#63=IFCCARTESIANPOINT((0.,3.,0.2));
#64=IFCPOLYLOOP((#60,#61,#62,#63));
#65=IFCFACEOUTERBOUND(#64,.T.);
#66=IFCFACE((#65));
#67=IFCCLOSEDSHELL((#66));
#68=IFCFACETEDBREP(#67);
#69=IFCSHAPEREPRESENTATION($,'Body','Brep',(#68));
#70=IFCPRODUCTDEFINITIONSHAPE($,$,(#69));
#71=IFCSLAB('brep',$,$,$,$,#34,#70,$,$);
#80=IFCCARTESIANPOINT((-1.,0.));
#81=IFCCARTESIANPOINT((1.,0.));
#82=IFCPOLYLINE((#80,#81));
#83=IFCCARTESIANPOINT((0.,0.));
#84=IFCAXIS2PLACEMENT2D(#83,$);
#85=IFCCIRCLE(#84,1.);
#86=IFCTRIMMEDCURVE(#85,(#81),(#80),.T.,.CARTESIAN.);
#87=IFCCOMPOSITECURVESEGMENT(.CONTINUOUS.,.T.,#82);
#88=IFCCOMPOSITECURVESEGMENT(.CONTINUOUS.,.T.,#86);
#89=IFCCOMPOSITECURVE((#87,#88),.F.);
#90=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#89);
#91=IFCEXTRUDEDAREASOLID(#90,#23,#14,1.);
#92=IFCSHAPEREPRESENTATION($,'Body','SweptSolid',(#91));
#93=IFCPRODUCTDEFINITIONSHAPE($,$,(#92));
#94=IFCMEMBER('arch',$,$,$,$,#34,#93,$,$);
#95=IFCSECTIONEDSPINE($,$,$);
#96=IFCSHAPEREPRESENTATION($,'Body','SectionedSpine',(#95));
#97=IFCPRODUCTDEFINITIONSHAPE($,$,(#96));
#98=IFCBEAM('spine',$,$,$,$,#34,#97,$,$);
#99=IFCSHAPEREPRESENTATION($,'Axis','Curve2D',(#82));
#100=IFCPRODUCTDEFINITIONSHAPE($,$,(#99));
#101=IFCBEAM('axisonly',$,$,$,$,#34,#100,$,$);
#102=IFCBEAM('empty',$,$,$,$,#34,$,$,$);
#110=IFCCARTESIANPOINT((2.,2.,2.));
#111=IFCAXIS2PLACEMENT3D(#110,$,$);
#112=IFCSPHERE(#111,0.5);
#113=IFCBLOCK(#23,1.,2.,3.);
#114=IFCBOOLEANRESULT(.UNION.,#113,#112);
#115=IFCCSGSOLID(#114);
#116=IFCSHAPEREPRESENTATION($,'Body','CSG',(#115));
#117=IFCPRODUCTDEFINITIONSHAPE($,$,(#116));
#118=IFCFOOTING('csg',$,$,$,$,#34,#117,$,$);
#120=IFCCARTESIANPOINT((0.,0.,0.));
#121=IFCCARTESIANPOINT((6.,0.,0.));
#122=IFCPOLYLINE((#120,#121));
#123=IFCSWEPTDISKSOLID(#122,0.1,$,$,$);
#124=IFCSHAPEREPRESENTATION($,'Body','AdvancedSweptSolid',(#123));
#125=IFCPRODUCTDEFINITIONSHAPE($,$,(#124));
#126=IFCREINFORCINGBAR('bar',$,$,$,$,#34,#125,$,$,$,$,$,$,$);
ENDSEC;
END-ISO-10303-21;
`

type box struct{ min, max [3]float64 }

func bounds(t *testing.T, verts []float64) box {
	t.Helper()
	require.NotEmpty(t, verts)
	require.Zero(t, len(verts)%3)
	b := box{
		min: [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
		max: [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for i := 0; i < len(verts); i += 3 {
		for k := 0; k < 3; k++ {
			b.min[k] = math.Min(b.min[k], verts[i+k])
			b.max[k] = math.Max(b.max[k], verts[i+k])
		}
	}
	return b
}

func assertBox(t *testing.T, want, got box) {
	t.Helper()
	for k := 0; k < 3; k++ {
		assert.InDelta(t, want.min[k], got.min[k], 1e-9, "min[%d]", k)
		assert.InDelta(t, want.max[k], got.max[k], 1e-9, "max[%d]", k)
	}
}

func loadShapes(t *testing.T) *ifc.Model {
	t.Helper()
	m, err := ifc.Parse(strings.NewReader(shapes))
	require.NoError(t, err)
	return m
}

func TestVertices_Shapes(t *testing.T) {
	m := loadShapes(t)
	ev := New(m, Settings{WorldCoords: true})

	tests := []struct {
		guid string
		want box
	}{
		{"rotated", box{[3]float64{9, 0, 3}, [3]float64{10, 2, 3.5}}},
		{"round", box{[3]float64{-0.25, -0.25, 0}, [3]float64{0.25, 0.25, 3}}},
		{"mapped", box{[3]float64{5, 0, 0}, [3]float64{7, 2, 2}}},
		{"clipped", box{[3]float64{0, 0, 0}, [3]float64{2, 1, 0.5}}},
		{"brep", box{[3]float64{0, 0, 0}, [3]float64{4, 3, 0.2}}},
		{"arch", box{[3]float64{-1, 0, 0}, [3]float64{1, 1, 1}}},
		{"csg", box{[3]float64{0, 0, 0}, [3]float64{2.5, 2.5, 3}}},
		{"bar", box{[3]float64{-0.1, -0.1, -0.1}, [3]float64{6.1, 0.1, 0.1}}},
	}
	for _, tt := range tests {
		t.Run(tt.guid, func(t *testing.T) {
			el, ok := m.ByGlobalID(tt.guid)
			require.True(t, ok)
			verts, err := ev.Vertices(el)
			require.NoError(t, err)
			assertBox(t, tt.want, bounds(t, verts))
		})
	}
}

func TestVertices_LocalCoords(t *testing.T) {
	m := loadShapes(t)
	ev := New(m, Settings{})
	el, _ := m.ByGlobalID("rotated")
	verts, err := ev.Vertices(el)
	require.NoError(t, err)
	assertBox(t, box{[3]float64{0, 0, 0}, [3]float64{2, 1, 0.5}}, bounds(t, verts))
}

func TestVertices_Errors(t *testing.T) {
	m := loadShapes(t)
	ev := New(m, Settings{WorldCoords: true})

	tests := []struct {
		guid string
		want error
	}{
		{"spine", ErrUnsupported},
		{"axisonly", ErrNoGeometry},
		{"empty", ErrNoGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.guid, func(t *testing.T) {
			el, ok := m.ByGlobalID(tt.guid)
			require.True(t, ok)
			_, err := ev.Vertices(el)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestVertices_ForeignElement(t *testing.T) {
	a := loadShapes(t)
	b := loadShapes(t)
	el, _ := b.ByGlobalID("round")
	_, err := New(a, Settings{WorldCoords: true}).Vertices(el)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestVertices_Millimetres(t *testing.T) {
	src := testutil.NewIFC().Millimetres().
		Storey("L0", "Level 0", 0).
		Box("IfcSlab", "slab", "S", [3]float64{1, 2, -0.2}, [3]float64{7, 6, 0}, "L0").
		String()
	m, err := ifc.Parse(strings.NewReader(src))
	require.NoError(t, err)

	el, _ := m.ByGlobalID("slab")
	verts, err := New(m, Settings{WorldCoords: true}).Vertices(el)
	require.NoError(t, err)
	assertBox(t, box{[3]float64{1, 2, -0.2}, [3]float64{7, 6, 0}}, bounds(t, verts))
}

func TestVertices_Concurrent(t *testing.T) {
	m := loadShapes(t)
	ev := New(m, Settings{WorldCoords: true})
	el, _ := m.ByGlobalID("rotated")

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ev.Vertices(el)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestArcAngles_IncludesExtremes(t *testing.T) {
	angles := arcAngles(0.1, math.Pi-0.1)
	assert.Equal(t, 0.1, angles[0])
	assert.Equal(t, math.Pi-0.1, angles[len(angles)-1])
	assert.Contains(t, angles, 8*(2*math.Pi/circleSegments))
}
