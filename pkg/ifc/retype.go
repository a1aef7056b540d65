package ifc

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/ifclint/pkg/step"
)

// predefined is the PredefinedType written for a retyped element.
var predefined = map[string]string{
	"IFCBEAM":   "BEAM",
	"IFCSLAB":   "FLOOR",
	"IFCCOLUMN": "COLUMN",
	"IFCWALL":   "STANDARD",
}

// Retype changes the entity type of el in place to one of IfcBeam,
// IfcSlab, IfcColumn or IfcWall. The instance name, GlobalId, placement
// and representation are kept, so every relationship still resolves.
// An unset Name becomes "Converted<Kind>".
func (m *Model) Retype(el Element, category string) error {
	if el.m != m || !el.Valid() {
		return fmt.Errorf("retype: element does not belong to this model")
	}
	target := strings.ToUpper(category)
	pt, ok := predefined[target]
	if !ok {
		return fmt.Errorf("retype: unsupported target %q", category)
	}
	if len(el.e.Parts) > 0 {
		return fmt.Errorf("retype: %s is a complex instance", el)
	}

	attrs := make([]step.Value, 8)
	for i := range attrs {
		attrs[i] = el.e.Attr(i)
	}
	if attrs[attrName].IsNull() {
		name := CanonicalName(target)
		attrs[attrName] = step.NewString("Converted" + strings.TrimPrefix(name, "Ifc"))
	}
	// IFC2X3 only declares PredefinedType on IfcSlab.
	if m.Schema() != "IFC2X3" || target == "IFCSLAB" {
		attrs = append(attrs, step.Enum(pt))
	}
	el.e.Type = target
	el.e.Attrs = attrs
	return nil
}
