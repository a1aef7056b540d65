package core

// ClassificationFinding records one shape rule firing for one element.
// An element appears once per rule that matched it.
type ClassificationFinding struct {
	Element   Element
	RuleID    string
	Source    Kind
	Suspected Kind
	Box       BoundingBox
}

// FloorIssue tags the variant of a FloorFinding.
type FloorIssue int

// Floor issue variants.
const (
	// WrongFloor: assigned storey disagrees with the geometry.
	WrongFloor FloorIssue = iota
	// Unassigned: no declared storey; Actual may name the occupied one.
	Unassigned
	// Floating: assigned, but the geometry is not within the storey.
	Floating
)

// String returns the kebab-case issue name.
func (f FloorIssue) String() string {
	switch f {
	case WrongFloor:
		return "wrong-floor"
	case Unassigned:
		return "unassigned"
	case Floating:
		return "floating"
	}
	return "unknown"
}

// FloorFinding is the storey reconciliation result for one element.
//
//   - WrongFloor: Assigned set, Actual possibly empty
//   - Unassigned: Assigned empty, Actual possibly empty
//   - Floating:   Assigned set, Actual empty
type FloorFinding struct {
	Issue    FloorIssue
	Element  Element
	Assigned string // storey GlobalId, empty when none
	Actual   string // storey GlobalId, empty when none
	Box      BoundingBox
}
