package core

import "strings"

// Element is a read-only reference to a building component owned by a
// source model. Analysis never mutates or creates elements.
type Element interface {
	// GlobalID returns the stable IFC GlobalId.
	GlobalID() string
	// Category returns the IFC entity name, e.g. "IfcBeam".
	Category() string
	// Name returns the element name, possibly empty.
	Name() string
}

// Kind is the structural category an element is checked as.
type Kind string

// Structural kinds.
const (
	KindBeam   Kind = "beam"
	KindSlab   Kind = "slab"
	KindColumn Kind = "column"
	KindWall   Kind = "wall"
	KindOther  Kind = "other"
)

// Label returns the capitalised kind name used in titles, e.g. "Beam".
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// IfcType returns the canonical IFC entity name for the kind.
func (k Kind) IfcType() string {
	switch k {
	case KindBeam:
		return "IfcBeam"
	case KindSlab:
		return "IfcSlab"
	case KindColumn:
		return "IfcColumn"
	case KindWall:
		return "IfcWall"
	}
	return ""
}

// KindOf maps an IFC entity name to its structural kind.
// Standard-case and elemented-case subtypes map to their parent kind.
func KindOf(category string) Kind {
	switch strings.ToUpper(category) {
	case "IFCBEAM", "IFCBEAMSTANDARDCASE":
		return KindBeam
	case "IFCSLAB", "IFCSLABSTANDARDCASE", "IFCSLABELEMENTEDCASE":
		return KindSlab
	case "IFCCOLUMN", "IFCCOLUMNSTANDARDCASE":
		return KindColumn
	case "IFCWALL", "IFCWALLSTANDARDCASE", "IFCWALLELEMENTEDCASE":
		return KindWall
	}
	return KindOther
}

// ParseKind converts a kind name (case insensitive) to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBeam, KindSlab, KindColumn, KindWall:
		return k, true
	}
	return KindOther, false
}
