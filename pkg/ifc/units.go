package ifc

import (
	"github.com/leapstack-labs/ifclint/pkg/step"
)

var siPrefixes = map[string]float64{
	"EXA":   1e18,
	"PETA":  1e15,
	"TERA":  1e12,
	"GIGA":  1e9,
	"MEGA":  1e6,
	"KILO":  1e3,
	"HECTO": 1e2,
	"DECA":  1e1,
	"DECI":  1e-1,
	"CENTI": 1e-2,
	"MILLI": 1e-3,
	"MICRO": 1e-6,
	"NANO":  1e-9,
	"PICO":  1e-12,
	"FEMTO": 1e-15,
	"ATTO":  1e-18,
}

// Unit types resolved from the project unit assignment.
const (
	lengthUnit     = "LENGTHUNIT"
	planeAngleUnit = "PLANEANGLEUNIT"
)

// unitFactor resolves the project unit of the given type as a factor to
// its SI base (metre, radian). Models without such a unit use the base.
func (m *Model) unitFactor(unitType string) float64 {
	for _, e := range m.file.Entities() {
		if e.Type != "IFCPROJECT" {
			continue
		}
		if ua, ok := m.file.Resolve(e.Attr(8)); ok {
			if s, ok := m.unitAssignmentScale(ua, unitType); ok {
				return s
			}
		}
	}
	for _, e := range m.file.Entities() {
		if e.Type == "IFCUNITASSIGNMENT" {
			if s, ok := m.unitAssignmentScale(e, unitType); ok {
				return s
			}
		}
	}
	return 1
}

func (m *Model) unitAssignmentScale(ua *step.Entity, unitType string) (float64, bool) {
	units, _ := ua.Attr(0).List()
	for _, u := range units {
		ue, ok := m.file.Resolve(u)
		if !ok {
			continue
		}
		if s, ok := m.unitScale(ue, unitType, 0); ok {
			return s, true
		}
	}
	return 0, false
}

// unitScale returns the SI factor of a unit entity of the given type.
func (m *Model) unitScale(u *step.Entity, unitType string, depth int) (float64, bool) {
	if depth > 4 {
		return 0, false
	}
	if rec, ok := u.Part("IFCSIUNIT"); ok {
		attrs := rec.Attrs
		if len(u.Parts) > 0 {
			// Complex form: NAMEDUNIT carries UnitType, SIUNIT carries (Prefix, Name).
			named, _ := u.Part("IFCNAMEDUNIT")
			if len(named.Attrs) < 2 || named.Attrs[1].Str != unitType || len(attrs) < 2 {
				return 0, false
			}
			return prefixScale(attrs[0]), true
		}
		if len(attrs) < 4 || attrs[1].Str != unitType {
			return 0, false
		}
		return prefixScale(attrs[2]), true
	}
	if u.Type == "IFCCONVERSIONBASEDUNIT" || u.Type == "IFCCONVERSIONBASEDUNITWITHOFFSET" {
		if u.Attr(1).Str != unitType {
			return 0, false
		}
		mwu, ok := m.file.Resolve(u.Attr(3))
		if !ok {
			return 0, false
		}
		factor, ok := mwu.Attr(0).Float()
		if !ok {
			return 0, false
		}
		base, ok := m.file.Resolve(mwu.Attr(1))
		if !ok {
			return factor, true
		}
		bs, ok := m.unitScale(base, unitType, depth+1)
		if !ok {
			bs = 1
		}
		return factor * bs, true
	}
	return 0, false
}

func prefixScale(v step.Value) float64 {
	if v.Kind != step.KindEnum {
		return 1
	}
	if f, ok := siPrefixes[v.Str]; ok {
		return f
	}
	return 1
}
