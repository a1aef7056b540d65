package ifc

import (
	"fmt"

	"github.com/leapstack-labs/ifclint/pkg/step"
)

// Element is a handle to one rooted entity of a Model. It implements
// core.Element. The zero Element is invalid.
type Element struct {
	m *Model
	e *step.Entity
}

// GlobalID returns the IFC GlobalId.
func (el Element) GlobalID() string {
	s, _ := el.e.Attr(attrGlobalID).Text()
	return s
}

// Category returns the canonical entity name, e.g. "IfcBeam".
func (el Element) Category() string {
	if el.e == nil {
		return ""
	}
	return CanonicalName(el.e.Type)
}

// Name returns the element name, or "" when unset.
func (el Element) Name() string {
	s, _ := el.e.Attr(attrName).Text()
	return s
}

// ID returns the instance name within the file.
func (el Element) ID() int {
	if el.e == nil {
		return 0
	}
	return el.e.ID
}

// Valid reports whether the handle refers to an entity.
func (el Element) Valid() bool { return el.e != nil }

// Entity returns the underlying instance.
func (el Element) Entity() *step.Entity { return el.e }

// Model returns the owning model.
func (el Element) Model() *Model { return el.m }

// Placement returns the ObjectPlacement attribute.
func (el Element) Placement() step.Value { return el.e.Attr(attrObjectPlacement) }

// Representation returns the Representation attribute.
func (el Element) Representation() step.Value { return el.e.Attr(attrRepresentation) }

// Label formats the element as "Name (GlobalId)", or just the GlobalId
// when the element has no name.
func (el Element) Label() string {
	if n := el.Name(); n != "" {
		return fmt.Sprintf("%s (%s)", n, el.GlobalID())
	}
	return el.GlobalID()
}

func (el Element) String() string {
	return fmt.Sprintf("#%d=%s(%s)", el.ID(), el.Category(), el.GlobalID())
}
