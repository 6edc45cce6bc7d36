package ir

import (
	"swell/internal/source"
	"swell/internal/types"
)

// ClassKind enumerates the nominal declaration shapes the front end emits.
type ClassKind uint8

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindEnum
	ClassKindEnumEntry
	ClassKindAnnotation
	ClassKindObject
)

func (k ClassKind) String() string {
	switch k {
	case ClassKindClass:
		return "class"
	case ClassKindInterface:
		return "interface"
	case ClassKindEnum:
		return "enum"
	case ClassKindEnumEntry:
		return "enum_entry"
	case ClassKindAnnotation:
		return "annotation"
	case ClassKindObject:
		return "object"
	default:
		return "unknown"
	}
}

// ClassFlags represents class modifiers as a bitmask.
type ClassFlags uint32

const (
	// ClassPublic indicates a public class.
	ClassPublic ClassFlags = 1 << iota
	// ClassAbstract indicates the class cannot be instantiated directly.
	ClassAbstract
	// ClassOpen indicates the class permits subclassing.
	ClassOpen
	// ClassSealed restricts subclassing to the same file.
	ClassSealed
)

// HasFlag returns true if the given flag is set.
func (f ClassFlags) HasFlag(flag ClassFlags) bool {
	return f&flag != 0
}

// String returns a human-readable representation of flags.
func (f ClassFlags) String() string {
	s := ""
	if f.HasFlag(ClassPublic) {
		s += "pub "
	}
	if f.HasFlag(ClassAbstract) {
		s += "abstract "
	}
	if f.HasFlag(ClassOpen) {
		s += "open "
	}
	if f.HasFlag(ClassSealed) {
		s += "sealed "
	}
	return s
}

// Class is a nominal type declaration: class, interface, enum, enum entry,
// annotation or singleton object.
type Class struct {
	Name  source.StringID
	Span  source.Span
	Kind  ClassKind
	Flags ClassFlags

	// Type is the interned nominal type of the declaration itself.
	Type types.TypeID

	// Supertypes lists the immediate supertype references in declaration
	// order. Entries are class types; anything else is a validation error.
	Supertypes []types.TypeID

	TypeParams []TypeParamID
	Fields     []FieldID
	Funcs      []FuncID
}

func (c *Class) IsInterface() bool {
	return c.Kind == ClassKindInterface
}

func (c *Class) IsAbstract() bool {
	return c.Flags.HasFlag(ClassAbstract) || c.Kind == ClassKindInterface
}
