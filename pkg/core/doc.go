// Package core defines the shared language of the ifclint system.
//
// This package contains:
//   - The read-only building element handle (Element) and its kinds
//   - Geometry value types (Vec3, BoundingBox, Dimensions)
//   - Finding types produced by the classifier and the storey reconciler
//   - Severity levels used when findings are reported
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
