package ir

import (
	"swell/internal/source"
	"swell/internal/types"
)

// CallData holds data for ExprCall.
//
// Receivers are kept in dedicated slots rather than mixed into Args so a
// call can be re-targeted without guessing which leading arguments were
// receivers. Args is positional over the target's value parameters; a nil
// entry means the caller omitted the argument and the callee evaluates
// the parameter's default. Args never grows past the value parameter
// count of the target.
type CallData struct {
	Target    FuncID
	TypeArgs  []types.TypeID
	Dispatch  *Expr // dispatch receiver argument, nil when absent
	Extension *Expr // extension receiver argument, nil when absent
	Args      []*Expr
}

func (*CallData) exprData() {}

// NewCallExpr wraps call data into an expression node. The expression
// type is the call site's static result type.
func NewCallExpr(data *CallData, t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprCall, Type: t, Span: span, Data: data}
}
