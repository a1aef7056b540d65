package step

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('tower-STR.ifc','2025-09-08T14:15:28',('Author'),(''),'exporter','app','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
/* a comment spanning
   two lines */
#1=IFCCARTESIANPOINT((0.,1.5,-2.E-1));
#2=IFCDIRECTION((0.,0.,1.));
#3=IFCAXIS2PLACEMENT3D(#1,#2,$);
#4=IFCBUILDINGSTOREY('2hQBAVPOr5VxhS3Jl0O47h',$,'Level 1',$,$,#3,$,$,.ELEMENT.,3000.);
#5=IFCPROPERTYSINGLEVALUE('Note',$,IFCLABEL('it''s \X\E9t\X2\00E9\X0\'),$);
#6=(IFCNAMEDUNIT(*,.LENGTHUNIT.)IFCSIUNIT());
#7=IFCRELCONTAINEDINSPATIALSTRUCTURE('0Lq$Wj2e1D9QBE5Uw8D9vL',$,$,$,(#4,#5),#4);
ENDSEC;
END-ISO-10303-21;
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 7, f.Len())
	assert.Equal(t, "IFC4", f.Schema())

	name, ok := f.Header.Get("file_name")
	require.True(t, ok)
	s, _ := name.Attrs[0].Text()
	assert.Equal(t, "tower-STR.ifc", s)

	pt, ok := f.Entity(1)
	require.True(t, ok)
	coords, ok := pt.Attr(0).List()
	require.True(t, ok)
	require.Len(t, coords, 3)
	x, _ := coords[0].Float()
	y, _ := coords[1].Float()
	z, _ := coords[2].Float()
	assert.Equal(t, []float64{0, 1.5, -0.2}, []float64{x, y, z})

	storey, _ := f.Entity(4)
	assert.True(t, storey.Is("IfcBuildingStorey"))
	assert.Equal(t, KindEnum, storey.Attr(8).Kind)
	assert.Equal(t, "ELEMENT", storey.Attr(8).Str)
	elev, ok := storey.Attr(9).Float()
	require.True(t, ok)
	assert.InDelta(t, 3000.0, elev, 1e-9)
	assert.True(t, storey.Attr(6).IsNull())
	assert.Equal(t, Null, storey.Attr(42), "out of range attributes read as null")

	prop, _ := f.Entity(5)
	label := prop.Attr(2)
	assert.Equal(t, KindTyped, label.Kind)
	assert.Equal(t, "IFCLABEL", label.Str)
	text, ok := label.Text()
	require.True(t, ok)
	assert.Equal(t, "it's été", text)

	complexInst, _ := f.Entity(6)
	assert.Empty(t, complexInst.Type)
	assert.True(t, complexInst.Is("IFCSIUNIT"))
	assert.True(t, complexInst.Is("IfcNamedUnit"))

	rel, _ := f.Entity(7)
	related, _ := rel.Attr(4).List()
	require.Len(t, related, 2)
	target, ok := f.Resolve(rel.Attr(5))
	require.True(t, ok)
	assert.Equal(t, 4, target.ID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "missing magic", src: "HEADER;ENDSEC;"},
		{name: "unterminated string", src: "ISO-10303-21;HEADER;FILE_NAME('x);ENDSEC;"},
		{name: "unterminated comment", src: "ISO-10303-21;/* never closed"},
		{name: "duplicate instance", src: "ISO-10303-21;HEADER;ENDSEC;DATA;#1=A();#1=B();ENDSEC;END-ISO-10303-21;"},
		{name: "missing semicolon", src: "ISO-10303-21;HEADER;ENDSEC;DATA;#1=A()#2=B();ENDSEC;END-ISO-10303-21;"},
		{name: "bad list", src: "ISO-10303-21;HEADER;ENDSEC;DATA;#1=A(1 2);ENDSEC;END-ISO-10303-21;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			var syn *SyntaxError
			assert.ErrorAs(t, err, &syn)
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, f.Len(), again.Len())
	for _, e := range f.Entities() {
		other, ok := again.Entity(e.ID)
		require.True(t, ok)
		assert.Equal(t, e.Type, other.Type)
		assert.Equal(t, encodeRecord(Record{Type: e.Type, Attrs: e.Attrs}), encodeRecord(Record{Type: other.Type, Attrs: other.Attrs}))
	}
	assert.Contains(t, buf.String(), "#4=IFCBUILDINGSTOREY('2hQBAVPOr5VxhS3Jl0O47h',$,'Level 1',$,$,#3,$,$,.ELEMENT.,3000.);")
}

func TestAdd(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	e := f.Add("IfcDirection", Value{Kind: KindList, Items: []Value{{Kind: KindReal, Real: 1}, {Kind: KindReal, Real: 0}}})
	assert.Equal(t, 8, e.ID)
	assert.Equal(t, "IFCDIRECTION", e.Type)
	assert.Equal(t, "(1.,0.)", e.Attr(0).String())
}

func TestFormatReal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0."},
		{1.5, "1.5"},
		{-3, "-3."},
		{1e21, "1.E+21"},
		{2.5e-7, "2.5E-07"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatReal(tt.in))
	}
}

func TestEnum(t *testing.T) {
	v := Enum("floor")
	assert.Equal(t, ".FLOOR.", v.String())
	assert.Equal(t, "FLOOR", v.Str)
}
