package ir

import (
	"swell/internal/source"
	"swell/internal/types"
)

// FuncFlags represents function modifiers as a bitmask.
type FuncFlags uint32

const (
	// FuncPublic indicates a public function.
	FuncPublic FuncFlags = 1 << iota
	// FuncAbstract indicates a function without an implementation that
	// subclasses must provide.
	FuncAbstract
	// FuncOpen indicates the function permits overriding.
	FuncOpen
	// FuncOverride indicates the function overrides a supertype member.
	FuncOverride
	// FuncConstructor indicates a constructor.
	FuncConstructor
	// FuncStatic indicates a function without a dispatch receiver that is
	// invoked on the class rather than an instance.
	FuncStatic
)

// HasFlag returns true if the given flag is set.
func (f FuncFlags) HasFlag(flag FuncFlags) bool {
	return f&flag != 0
}

// String returns a human-readable representation of flags.
func (f FuncFlags) String() string {
	s := ""
	if f.HasFlag(FuncPublic) {
		s += "pub "
	}
	if f.HasFlag(FuncAbstract) {
		s += "abstract "
	}
	if f.HasFlag(FuncOpen) {
		s += "open "
	}
	if f.HasFlag(FuncOverride) {
		s += "override "
	}
	if f.HasFlag(FuncConstructor) {
		s += "ctor "
	}
	if f.HasFlag(FuncStatic) {
		s += "static "
	}
	return s
}

// Func is a function declaration. Member functions name their owning
// class; top-level functions have Owner == NoClassID.
type Func struct {
	Name   source.StringID
	Span   source.Span
	Flags  FuncFlags
	Origin Origin
	Owner  ClassID

	TypeParams []TypeParamID

	// Params lists every parameter in binding order: the dispatch
	// receiver first if present, then the extension receiver, then the
	// value parameters.
	Params []ParamID

	// Result is the return type (the unit type for procedures).
	Result types.TypeID

	// Overridden lists the immediate supertype members this function
	// overrides. Fake overrides always have at least one entry.
	Overridden []FuncID

	// Body is nil for abstract functions and fake overrides.
	Body *Block
}

func (f *Func) IsReal() bool {
	return f.Origin.IsReal()
}

func (f *Func) IsFakeOverride() bool {
	return f.Origin == OriginFakeOverride
}

func (f *Func) IsAbstract() bool {
	return f.Flags.HasFlag(FuncAbstract)
}

// Block holds the ordered root expressions of a function body. Control
// flow below the roots is opaque to this layer.
type Block struct {
	Span  source.Span
	Exprs []*Expr
}
