package ir

import (
	"swell/internal/types"
)

// ResolvedCall abstracts the outcome of overload and override
// resolution. The front end keeps richer records; this layer only needs
// the chosen target and its type arguments.
type ResolvedCall interface {
	Target() FuncID
	TypeArgs() []types.TypeID
}

// SimpleResolvedCall is the plain value implementation of ResolvedCall.
type SimpleResolvedCall struct {
	Fn   FuncID
	Args []types.TypeID
}

func (c SimpleResolvedCall) Target() FuncID           { return c.Fn }
func (c SimpleResolvedCall) TypeArgs() []types.TypeID { return c.Args }

// CallContext carries a resolved call together with the overload
// candidates resolution considered and the argument expressions in
// source order. It answers parameter queries even when the queried
// parameter belongs to a candidate other than the chosen target, which
// happens when diagnostics inspect the rejected overloads.
type CallContext struct {
	Resolved   ResolvedCall
	Candidates []FuncID
	Args       []*Expr
}

// ArgumentForParameter returns the argument bound to the parameter. For
// parameters of the resolved target the answer is positional. For
// parameters of another candidate the arguments are scanned for the
// first whose type is compatible with the parameter, nil when none is.
func (c *CallContext) ArgumentForParameter(m *Module, param ParamID) *Expr {
	if c == nil || c.Resolved == nil {
		return nil
	}
	p := m.Param(param)
	if p == nil {
		return nil
	}
	if p.Owner == c.Resolved.Target() {
		if p.IsReceiver() {
			// Receivers of the resolved target are not part of Args.
			return nil
		}
		if idx := valueIndex(m, p); idx < len(c.Args) {
			return c.Args[idx]
		}
		return nil
	}
	if !c.isCandidate(p.Owner) {
		return nil
	}
	for _, arg := range c.Args {
		if arg == nil {
			continue
		}
		if typeCompatible(m, arg.Type, p.Type) {
			return arg
		}
	}
	return nil
}

func (c *CallContext) isCandidate(fn FuncID) bool {
	for _, cand := range c.Candidates {
		if cand == fn {
			return true
		}
	}
	return false
}

// typeCompatible reports whether a value of type have can feed a
// parameter of type want: exact identity, a class passed where one of
// its superclasses is expected, or arrays of compatible elements.
func typeCompatible(m *Module, have, want types.TypeID) bool {
	if have == want {
		return true
	}
	if m == nil || m.Types == nil {
		return false
	}
	ht, hok := m.Types.Lookup(have)
	wt, wok := m.Types.Lookup(want)
	if !hok || !wok {
		return false
	}
	if ht.Kind == types.KindClass && wt.Kind == types.KindClass {
		return IsSameOrSubclassOf(m, m.ClassOfType(have), m.ClassOfType(want))
	}
	if ht.Kind == types.KindArray && wt.Kind == types.KindArray {
		return typeCompatible(m, ht.Elem, wt.Elem)
	}
	return false
}
