package ir

import (
	"swell/internal/source"
	"swell/internal/types"
)

// ExprKind enumerates IR expression kinds. The set is deliberately small:
// this layer manipulates calls and the values that feed them, everything
// below stays opaque to the passes that run here.
type ExprKind uint8

const (
	// ExprConst represents literal constants (int, float, bool, string, unit).
	ExprConst ExprKind = iota
	// ExprGetValue reads a parameter of the enclosing function.
	ExprGetValue
	// ExprGetField reads a member field off a receiver expression.
	ExprGetField
	// ExprCall applies a function to receiver and value arguments.
	ExprCall
	// ExprArrayLit builds an array value, also used as the vararg holder.
	ExprArrayLit
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprConst:
		return "Const"
	case ExprGetValue:
		return "GetValue"
	case ExprGetField:
		return "GetField"
	case ExprCall:
		return "Call"
	case ExprArrayLit:
		return "ArrayLit"
	default:
		return "Unknown"
	}
}

// Expr represents an IR expression with type information.
type Expr struct {
	Kind ExprKind
	Type types.TypeID // static type of the expression
	Span source.Span  // front-end location for diagnostics
	Data ExprData     // kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// ConstKind enumerates literal value kinds.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstString
	ConstUnit
)

func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "int"
	case ConstFloat:
		return "float"
	case ConstBool:
		return "bool"
	case ConstString:
		return "string"
	case ConstUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// ConstData holds data for ExprConst.
type ConstData struct {
	Kind        ConstKind
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue source.StringID
}

func (ConstData) exprData() {}

// GetValueData holds data for ExprGetValue.
type GetValueData struct {
	Param ParamID
}

func (GetValueData) exprData() {}

// GetFieldData holds data for ExprGetField.
type GetFieldData struct {
	Field    FieldID
	Receiver *Expr // nil for static fields
}

func (GetFieldData) exprData() {}

// ArrayLitData holds data for ExprArrayLit.
type ArrayLitData struct {
	Elem  types.TypeID
	Elems []*Expr
}

func (ArrayLitData) exprData() {}

// AsCall returns the call payload when the expression is a call.
func (e *Expr) AsCall() (*CallData, bool) {
	if e == nil || e.Kind != ExprCall {
		return nil, false
	}
	data, ok := e.Data.(*CallData)
	if !ok {
		return nil, false
	}
	return data, true
}

// Expression constructors -----------------------------------------------------

func NewIntConst(v int64, t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprConst, Type: t, Span: span, Data: ConstData{Kind: ConstInt, IntValue: v}}
}

func NewFloatConst(v float64, t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprConst, Type: t, Span: span, Data: ConstData{Kind: ConstFloat, FloatValue: v}}
}

func NewBoolConst(v bool, t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprConst, Type: t, Span: span, Data: ConstData{Kind: ConstBool, BoolValue: v}}
}

func NewStringConst(v source.StringID, t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprConst, Type: t, Span: span, Data: ConstData{Kind: ConstString, StringValue: v}}
}

func NewUnitConst(t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprConst, Type: t, Span: span, Data: ConstData{Kind: ConstUnit}}
}

func NewGetValue(param ParamID, t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprGetValue, Type: t, Span: span, Data: GetValueData{Param: param}}
}

func NewGetField(field FieldID, receiver *Expr, t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprGetField, Type: t, Span: span, Data: GetFieldData{Field: field, Receiver: receiver}}
}

func NewArrayLit(arrayType, elem types.TypeID, elems []*Expr, span source.Span) *Expr {
	return &Expr{Kind: ExprArrayLit, Type: arrayType, Span: span, Data: ArrayLitData{Elem: elem, Elems: elems}}
}
