// Package step reads and writes ISO 10303-21 (STEP physical file) exchange
// structures, the container format of IFC building models.
//
// The reader keeps the source text of every scalar token so that a parsed
// file can be written back without reformatting numbers or strings.
package step

import (
	"strconv"
	"strings"
)

// Kind identifies the type of a parameter value.
type Kind int

// Value kinds.
const (
	KindNull    Kind = iota // $
	KindDerived             // *
	KindInteger
	KindReal
	KindString
	KindEnum
	KindBinary
	KindRef
	KindList
	KindTyped // IFCLABEL('x')
)

// Value is a single entity parameter.
type Value struct {
	Kind  Kind
	Raw   string  // source text for scalars
	Str   string  // decoded string, enum name (without dots) or typed name
	Int   int64   // integer value
	Real  float64 // real value (also set for integers)
	Ref   int     // instance name for KindRef
	Items []Value // list items, or the single wrapped value for KindTyped
}

// Null is the unset value.
var Null = Value{Kind: KindNull, Raw: "$"}

// Enum returns an enumeration value.
func Enum(name string) Value {
	name = strings.ToUpper(name)
	return Value{Kind: KindEnum, Str: name, Raw: "." + name + "."}
}

// IsNull reports whether the value is unset.
func (v Value) IsNull() bool {
	return v.Kind == KindNull || v.Kind == KindDerived
}

// Float returns the numeric value of an integer, real or typed numeric value.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindInteger, KindReal:
		return v.Real, true
	case KindTyped:
		if len(v.Items) == 1 {
			return v.Items[0].Float()
		}
	}
	return 0, false
}

// Text returns the decoded string of a string or typed string value.
func (v Value) Text() (string, bool) {
	switch v.Kind {
	case KindString:
		return v.Str, true
	case KindTyped:
		if len(v.Items) == 1 {
			return v.Items[0].Text()
		}
	}
	return "", false
}

// RefID returns the referenced instance name.
func (v Value) RefID() (int, bool) {
	if v.Kind == KindRef {
		return v.Ref, true
	}
	return 0, false
}

// List returns the list items.
func (v Value) List() ([]Value, bool) {
	if v.Kind == KindList {
		return v.Items, true
	}
	return nil, false
}

// String encodes the value in exchange-file syntax.
func (v Value) String() string {
	var b strings.Builder
	v.encode(&b)
	return b.String()
}

func (v Value) encode(b *strings.Builder) {
	switch v.Kind {
	case KindNull:
		b.WriteByte('$')
	case KindDerived:
		b.WriteByte('*')
	case KindRef:
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(v.Ref))
	case KindList:
		b.WriteByte('(')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			it.encode(b)
		}
		b.WriteByte(')')
	case KindTyped:
		b.WriteString(v.Str)
		b.WriteByte('(')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			it.encode(b)
		}
		b.WriteByte(')')
	case KindString:
		if v.Raw != "" {
			b.WriteString(v.Raw)
			return
		}
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(v.Str, "'", "''"))
		b.WriteByte('\'')
	case KindEnum:
		if v.Raw != "" {
			b.WriteString(v.Raw)
			return
		}
		b.WriteString("." + v.Str + ".")
	case KindInteger:
		if v.Raw != "" {
			b.WriteString(v.Raw)
			return
		}
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindReal:
		if v.Raw != "" {
			b.WriteString(v.Raw)
			return
		}
		b.WriteString(FormatReal(v.Real))
	default:
		b.WriteString(v.Raw)
	}
}

// FormatReal formats a real so that it always carries a decimal point.
func FormatReal(f float64) string {
	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsAny(s, ".EN") {
		s += "."
	} else if i := strings.IndexByte(s, 'E'); i >= 0 && !strings.Contains(s[:i], ".") {
		s = s[:i] + "." + s[i:]
	}
	return s
}

// NewString returns a string value.
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }

// NewReal returns a real value.
func NewReal(f float64) Value { return Value{Kind: KindReal, Real: f} }

// NewRef returns a reference to instance id.
func NewRef(id int) Value { return Value{Kind: KindRef, Ref: id, Raw: "#" + strconv.Itoa(id)} }

// NewList returns a list of items.
func NewList(items ...Value) Value { return Value{Kind: KindList, Items: items} }
