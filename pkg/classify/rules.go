package classify

import "github.com/leapstack-labs/ifclint/pkg/core"

// thin is the slab-like thinness clause shared by SC01 and SC02.
func thin(d core.Dimensions) bool {
	return d.Thickness < 0.3*d.Width && d.Thickness < 0.2*d.Length
}

func init() {
	Register(RuleDef{
		ID:          "SC01",
		Name:        "beam.slab-like",
		Source:      core.KindBeam,
		Suspected:   core.KindSlab,
		Description: "Beam is thin and broad like a slab",
		Geometry:    "thin thickness vs large plan",
		Hint:        "t < 0.3w and t < 0.2L and w*L > 2.0",
		Severity:    core.SeverityWarning,
		Check: func(d core.Dimensions) bool {
			return thin(d) && d.Width*d.Length > 2.0
		},
	})

	Register(RuleDef{
		ID:          "SC02",
		Name:        "beam.wall-like",
		Source:      core.KindBeam,
		Suspected:   core.KindWall,
		Description: "Beam is a tall thin plate like a wall",
		Geometry:    "tall, plate-like",
		Hint:        "((w > 4t and L > 2w) or (L > 8t and w > t)) and not slab-thin",
		Severity:    core.SeverityWarning,
		Check: func(d core.Dimensions) bool {
			t, w, l := d.Thickness, d.Width, d.Length
			return ((w > 4*t && l > 2*w) || (l > 8*t && w > t)) && !thin(d)
		},
	})

	Register(RuleDef{
		ID:          "SC03",
		Name:        "slab.beam-like",
		Source:      core.KindSlab,
		Suspected:   core.KindBeam,
		Description: "Slab is long and narrow like a beam",
		Geometry:    "long and deep vs thickness",
		Hint:        "w > 3t and L > 4t and L/w > 2.0",
		DividesBy:   DivWidth,
		Severity:    core.SeverityWarning,
		Check: func(d core.Dimensions) bool {
			t, w, l := d.Thickness, d.Width, d.Length
			return w > 3*t && l > 4*t && l/w > 2.0
		},
	})

	Register(RuleDef{
		ID:          "SC04",
		Name:        "slab.column-like",
		Source:      core.KindSlab,
		Suspected:   core.KindColumn,
		Description: "Slab is chunky like a column",
		Geometry:    "compact, near-square section",
		Hint:        "w/t < 2.0 and L/w < 3.0",
		DividesBy:   DivThickness | DivWidth,
		Severity:    core.SeverityWarning,
		Check: func(d core.Dimensions) bool {
			return d.Width/d.Thickness < 2.0 && d.Length/d.Width < 3.0
		},
	})

	Register(RuleDef{
		ID:          "SC05",
		Name:        "column.slab-like",
		Source:      core.KindColumn,
		Suspected:   core.KindSlab,
		Description: "Column is flat like a slab",
		Geometry:    "flat, plate-like",
		Hint:        "t < 0.3w and t < 0.3L",
		Severity:    core.SeverityWarning,
		Check: func(d core.Dimensions) bool {
			return d.Thickness < 0.3*d.Width && d.Thickness < 0.3*d.Length
		},
	})

	Register(RuleDef{
		ID:          "SC06",
		Name:        "wall.beam-like",
		Source:      core.KindWall,
		Suspected:   core.KindBeam,
		Description: "Wall is long and slender like a beam",
		Geometry:    "bar-like",
		Hint:        "(w < 3t and L > 4t) or L/w > 8.0",
		DividesBy:   DivWidth,
		Severity:    core.SeverityWarning,
		Check: func(d core.Dimensions) bool {
			t, w, l := d.Thickness, d.Width, d.Length
			return (w < 3*t && l > 4*t) || l/w > 8.0
		},
	})
}
