package ifc

import "strings"

// known maps upper-case entity names to their schema spelling.
var known = func() map[string]string {
	names := []string{
		"IfcBeam", "IfcBeamStandardCase", "IfcBeamType",
		"IfcSlab", "IfcSlabStandardCase", "IfcSlabElementedCase", "IfcSlabType",
		"IfcColumn", "IfcColumnStandardCase", "IfcColumnType",
		"IfcWall", "IfcWallStandardCase", "IfcWallElementedCase", "IfcWallType",
		"IfcMember", "IfcPlate", "IfcFooting", "IfcPile", "IfcRoof", "IfcStair",
		"IfcStairFlight", "IfcRamp", "IfcRailing", "IfcCovering", "IfcCurtainWall",
		"IfcDoor", "IfcWindow", "IfcBuildingElementProxy", "IfcFurnishingElement",
		"IfcOpeningElement", "IfcReinforcingBar", "IfcReinforcingMesh",
		"IfcProject", "IfcSite", "IfcBuilding", "IfcBuildingStorey", "IfcSpace",
		"IfcRelContainedInSpatialStructure", "IfcRelAggregates", "IfcRelDefinesByType",
		"IfcRelDefinesByProperties", "IfcRelVoidsElement", "IfcRelFillsElement",
		"IfcPropertySet", "IfcPropertySingleValue", "IfcOwnerHistory",
		"IfcLocalPlacement", "IfcAxis2Placement2D", "IfcAxis2Placement3D",
		"IfcCartesianPoint", "IfcDirection", "IfcProductDefinitionShape",
		"IfcShapeRepresentation", "IfcGeometricRepresentationContext",
		"IfcGeometricRepresentationSubContext", "IfcExtrudedAreaSolid",
		"IfcRectangleProfileDef", "IfcCircleProfileDef", "IfcIShapeProfileDef",
		"IfcArbitraryClosedProfileDef", "IfcPolyline", "IfcFacetedBrep",
		"IfcTriangulatedFaceSet", "IfcPolygonalFaceSet", "IfcBooleanClippingResult",
		"IfcMappedItem", "IfcRepresentationMap", "IfcUnitAssignment", "IfcSIUnit",
		"IfcConversionBasedUnit", "IfcMeasureWithUnit",
	}
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[strings.ToUpper(n)] = n
	}
	return m
}()

// subtypes lists the instantiable subtypes included when querying a category.
var subtypes = map[string][]string{
	"IFCBEAM":   {"IFCBEAMSTANDARDCASE"},
	"IFCSLAB":   {"IFCSLABSTANDARDCASE", "IFCSLABELEMENTEDCASE"},
	"IFCCOLUMN": {"IFCCOLUMNSTANDARDCASE"},
	"IFCWALL":   {"IFCWALLSTANDARDCASE", "IFCWALLELEMENTEDCASE"},
	"IFCMEMBER": {"IFCMEMBERSTANDARDCASE"},
	"IFCPLATE":  {"IFCPLATESTANDARDCASE"},
	"IFCDOOR":   {"IFCDOORSTANDARDCASE"},
	"IFCWINDOW": {"IFCWINDOWSTANDARDCASE"},
}

// CanonicalName returns the schema spelling of an entity name. Names
// outside the known set are returned unchanged.
func CanonicalName(name string) string {
	if n, ok := known[strings.ToUpper(name)]; ok {
		return n
	}
	return name
}
