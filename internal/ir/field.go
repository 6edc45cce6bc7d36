package ir

import (
	"swell/internal/source"
	"swell/internal/types"
)

// FieldFlags represents field modifiers as a bitmask.
type FieldFlags uint32

const (
	// FieldPublic indicates a public field.
	FieldPublic FieldFlags = 1 << iota
	// FieldMutable indicates the field may be reassigned.
	FieldMutable
	// FieldStatic indicates a per-class rather than per-instance field.
	FieldStatic
)

// HasFlag returns true if the given flag is set.
func (f FieldFlags) HasFlag(flag FieldFlags) bool {
	return f&flag != 0
}

// String returns a human-readable representation of flags.
func (f FieldFlags) String() string {
	s := ""
	if f.HasFlag(FieldPublic) {
		s += "pub "
	}
	if f.HasFlag(FieldMutable) {
		s += "mut "
	}
	if f.HasFlag(FieldStatic) {
		s += "static "
	}
	return s
}

// Field is a member field declaration. Like functions, fields in a
// subclass that merely re-expose a supertype field are materialized as
// fake overrides with Overridden pointing at the supertype members.
type Field struct {
	Name   source.StringID
	Span   source.Span
	Flags  FieldFlags
	Origin Origin
	Owner  ClassID
	Type   types.TypeID

	Overridden []FieldID

	// Init is the optional initializer expression.
	Init *Expr
}

func (f *Field) IsReal() bool {
	return f.Origin.IsReal()
}

func (f *Field) IsFakeOverride() bool {
	return f.Origin == OriginFakeOverride
}
