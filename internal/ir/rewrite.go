package ir

import (
	"errors"
	"fmt"

	"swell/internal/types"
)

// RewriteOptions controls how RewriteCall maps the receiver slots of the
// old call onto the new target's parameter shape.
type RewriteOptions struct {
	// DispatchReceiverAsFirstArgument moves the dispatch receiver into
	// the first value-argument slot. Used when re-targeting a member call
	// to a static counterpart that takes the instance explicitly.
	DispatchReceiverAsFirstArgument bool

	// FirstArgumentAsDispatchReceiver moves the first value argument into
	// the dispatch receiver slot: the inverse direction, for re-targeting
	// a static call back to a member function.
	FirstArgumentAsDispatchReceiver bool
}

var errRewriteFlagConflict = errors.New("ir: dispatchReceiverAsFirstArgument and firstArgumentAsDispatchReceiver are mutually exclusive")

// RewriteCall returns a copy of the call expression re-targeted at
// target. Receivers and value arguments carry over positionally; the two
// option flags shift the dispatch receiver in or out of the value
// argument list. The extension receiver always stays in its slot. The
// rewritten call keeps the call site's static type and span.
//
// Shape violations return an error: both flags at once, a type-argument
// count differing from the target's generic arity, a missing dispatch
// receiver or first argument for the requested shift, or more arguments
// than the new target has parameters.
func RewriteCall(m *Module, call *Expr, target FuncID, opts RewriteOptions) (*Expr, error) {
	data, ok := call.AsCall()
	if !ok {
		return nil, fmt.Errorf("ir: rewrite of a non-call expression")
	}
	if opts.DispatchReceiverAsFirstArgument && opts.FirstArgumentAsDispatchReceiver {
		return nil, errRewriteFlagConflict
	}
	tgt := m.Func(target)
	if tgt == nil {
		return nil, fmt.Errorf("ir: rewrite targets missing function %s", FuncKey(target))
	}
	if len(data.TypeArgs) != len(tgt.TypeParams) {
		return nil, fmt.Errorf("ir: %d type arguments for %d type parameters of %s",
			len(data.TypeArgs), len(tgt.TypeParams), describeFunc(m, target))
	}

	out := &CallData{
		Target:   target,
		TypeArgs: append([]types.TypeID(nil), data.TypeArgs...),
	}

	switch {
	case opts.DispatchReceiverAsFirstArgument:
		if data.Dispatch == nil {
			return nil, fmt.Errorf("ir: call to %s has no dispatch receiver to shift", describeFunc(m, data.Target))
		}
		out.Extension = data.Extension
		out.Args = make([]*Expr, 0, len(data.Args)+1)
		out.Args = append(out.Args, data.Dispatch)
		out.Args = append(out.Args, data.Args...)

	case opts.FirstArgumentAsDispatchReceiver:
		if len(data.Args) == 0 || data.Args[0] == nil {
			return nil, fmt.Errorf("ir: call to %s has no first argument to shift", describeFunc(m, data.Target))
		}
		out.Dispatch = data.Args[0]
		out.Extension = data.Extension
		out.Args = append([]*Expr(nil), data.Args[1:]...)

	default:
		out.Dispatch = data.Dispatch
		out.Extension = data.Extension
		out.Args = append([]*Expr(nil), data.Args...)
	}

	if nparams := len(m.ValueParams(target)); len(out.Args) > nparams {
		return nil, fmt.Errorf("ir: %d arguments for %d parameters of %s",
			len(out.Args), nparams, describeFunc(m, target))
	}
	if out.Dispatch != nil && !m.ReceiverParam(target, ParamDispatch).IsValid() {
		return nil, fmt.Errorf("ir: %s takes no dispatch receiver", describeFunc(m, target))
	}
	if out.Extension != nil && !m.ReceiverParam(target, ParamExtension).IsValid() {
		return nil, fmt.Errorf("ir: %s takes no extension receiver", describeFunc(m, target))
	}

	return NewCallExpr(out, call.Type, call.Span), nil
}
