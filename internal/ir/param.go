package ir

import (
	"swell/internal/source"
	"swell/internal/types"
)

// ParamKind distinguishes receivers from ordinary value parameters.
// Receivers are modeled as parameters so argument binding can treat a
// member call as a plain application of every parameter in order.
type ParamKind uint8

const (
	// ParamDispatch is the instance receiver used for virtual dispatch.
	ParamDispatch ParamKind = iota
	// ParamExtension is the receiver of an extension function.
	ParamExtension
	// ParamValue is an ordinary value parameter.
	ParamValue
)

func (k ParamKind) String() string {
	switch k {
	case ParamDispatch:
		return "dispatch"
	case ParamExtension:
		return "extension"
	case ParamValue:
		return "value"
	default:
		return "unknown"
	}
}

// Param is a single parameter declaration of a function.
type Param struct {
	Name  source.StringID
	Span  source.Span
	Kind  ParamKind
	Owner FuncID

	// Index is the position inside the owner's parameter list, receivers
	// included.
	Index uint32

	Type types.TypeID

	// IsVararg marks the parameter that collects surplus call arguments.
	// Its Type is the holder array type and VarargElem the element type.
	IsVararg   bool
	VarargElem types.TypeID

	// HasDefault marks parameters callers may omit. Default carries the
	// defaulting expression, evaluated in the callee.
	HasDefault bool
	Default    *Expr
}

func (p *Param) IsReceiver() bool {
	return p.Kind != ParamValue
}
