package ir

import (
	"fmt"

	"swell/internal/source"
)

// BoundArgument pairs a parameter with the expression bound to it.
type BoundArgument struct {
	Param ParamID
	Value *Expr
}

// Arguments returns the call's arguments in evaluation order, one entry
// per parameter of the target that actually received a value: dispatch
// receiver, extension receiver, then value arguments. Omitted arguments
// (defaulted parameters) are skipped.
func Arguments(m *Module, call *CallData) []BoundArgument {
	if call == nil {
		return nil
	}
	f := m.Func(call.Target)
	if f == nil {
		return nil
	}
	out := make([]BoundArgument, 0, len(f.Params))
	valueIdx := 0
	for _, pid := range f.Params {
		p := m.Param(pid)
		if p == nil {
			continue
		}
		switch p.Kind {
		case ParamDispatch:
			if call.Dispatch != nil {
				out = append(out, BoundArgument{Param: pid, Value: call.Dispatch})
			}
		case ParamExtension:
			if call.Extension != nil {
				out = append(out, BoundArgument{Param: pid, Value: call.Extension})
			}
		case ParamValue:
			if valueIdx < len(call.Args) && call.Args[valueIdx] != nil {
				out = append(out, BoundArgument{Param: pid, Value: call.Args[valueIdx]})
			}
			valueIdx++
		}
	}
	return out
}

// AddArguments binds the given expressions to their parameters, routing
// receivers into the receiver slots and value arguments to their
// positional slot. Binding a parameter that does not belong to the
// call's target is construction misuse and panics.
func AddArguments(m *Module, call *CallData, args map[ParamID]*Expr) {
	for pid, value := range args {
		SetArgument(m, call, pid, value)
	}
}

// SetArgument binds a single parameter. See AddArguments.
func SetArgument(m *Module, call *CallData, param ParamID, value *Expr) {
	p := m.Param(param)
	if p == nil || call == nil || p.Owner != call.Target {
		panic(fmt.Errorf("ir: parameter %d does not belong to call target %s", param, describeFunc(m, callTarget(call))))
	}
	switch p.Kind {
	case ParamDispatch:
		call.Dispatch = value
	case ParamExtension:
		call.Extension = value
	default:
		idx := valueIndex(m, p)
		for len(call.Args) <= idx {
			call.Args = append(call.Args, nil)
		}
		call.Args[idx] = value
	}
}

// ArgumentForParameter returns the expression bound to the parameter,
// nil when the argument was omitted or the parameter belongs to another
// function.
func ArgumentForParameter(m *Module, call *CallData, param ParamID) *Expr {
	p := m.Param(param)
	if p == nil || call == nil || p.Owner != call.Target {
		return nil
	}
	switch p.Kind {
	case ParamDispatch:
		return call.Dispatch
	case ParamExtension:
		return call.Extension
	default:
		idx := valueIndex(m, p)
		if idx < len(call.Args) {
			return call.Args[idx]
		}
		return nil
	}
}

// UsesDefaultArguments reports whether the callee will evaluate at least
// one default: some value parameter of the target has no bound argument.
// An explicitly supplied empty vararg holder counts as a bound argument.
func UsesDefaultArguments(m *Module, call *CallData) bool {
	if call == nil {
		return false
	}
	f := m.Func(call.Target)
	if f == nil {
		return false
	}
	valueIdx := 0
	for _, pid := range f.Params {
		p := m.Param(pid)
		if p == nil || p.Kind != ParamValue {
			continue
		}
		if valueIdx >= len(call.Args) || call.Args[valueIdx] == nil {
			return true
		}
		valueIdx++
	}
	return false
}

// PackVarargs normalizes a positional value-argument list against the
// target's parameters. When the last parameter is a vararg, surplus
// trailing values collapse into a synthetic array literal bound to it;
// a single value whose type already is the holder array passes through
// as a spread. Supplying more values than a non-vararg target has
// parameters panics: that is a construction bug, not user input.
func PackVarargs(m *Module, target FuncID, values []*Expr, span source.Span) []*Expr {
	f := m.Func(target)
	if f == nil {
		panic(fmt.Errorf("ir: invalid call target %d", target))
	}
	params := m.ValueParams(target)
	nparams := len(params)

	var vararg *Param
	if nparams > 0 {
		if p := m.Param(params[nparams-1]); p != nil && p.IsVararg {
			vararg = p
		}
	}
	if vararg == nil {
		if len(values) > nparams {
			panic(fmt.Errorf("ir: %d arguments for %d parameters of %s",
				len(values), nparams, describeFunc(m, target)))
		}
		return values
	}

	head := nparams - 1
	// Spread form: exactly one value in the vararg position already typed
	// as the holder array.
	if len(values) == nparams {
		last := values[head]
		if last != nil && last.Type == vararg.Type {
			return values
		}
	}
	if len(values) < head {
		// Not enough values to even reach the vararg; leave the tail for
		// defaults, nothing to pack.
		return values
	}

	surplus := values[head:]
	holderSpan := span
	for _, e := range surplus {
		if e != nil {
			holderSpan = holderSpan.Cover(e.Span)
		}
	}
	holder := NewArrayLit(vararg.Type, vararg.VarargElem, append([]*Expr(nil), surplus...), holderSpan)

	out := make([]*Expr, 0, nparams)
	out = append(out, values[:head]...)
	out = append(out, holder)
	return out
}

// valueIndex counts the value parameters preceding p in its owner's
// list, which is p's position inside CallData.Args.
func valueIndex(m *Module, p *Param) int {
	f := m.Func(p.Owner)
	if f == nil {
		return int(p.Index)
	}
	idx := 0
	for i, pid := range f.Params {
		if uint32(i) == p.Index {
			break
		}
		if q := m.Param(pid); q != nil && q.Kind == ParamValue {
			idx++
		}
	}
	return idx
}

func callTarget(call *CallData) FuncID {
	if call == nil {
		return NoFuncID
	}
	return call.Target
}
