package lower

import (
	"fmt"

	"fortio.org/safecast"

	"swell/internal/diag"
	"swell/internal/ir"
	"swell/internal/types"
)

// StaticCalls lowers dispatch calls on final members to static calls.
// A member is final when nothing can override it further: real,
// non-open, non-abstract, with a body, owned by a class rather than an
// interface. For each such target the pass synthesizes one static
// counterpart per module: origin synthetic, the dispatch receiver
// lowered to the leading value parameter, the body cloned with
// parameter reads remapped. Call sites supplying a dispatch receiver
// are then rewritten at the counterpart with the receiver shifted into
// the first argument slot. The original member stays in place, so the
// pass only ever appends to the arenas.
func StaticCalls(m *ir.Module, r diag.Reporter) (Stats, error) {
	p := &staticizer{m: m, done: make(map[ir.FuncID]ir.FuncID)}
	var stats Stats
	var firstErr error

	visitModuleExprs(m, func(slot **ir.Expr) {
		if firstErr != nil {
			return
		}
		call, ok := (*slot).AsCall()
		if !ok {
			return
		}
		stats.CallsExamined++
		if call.Dispatch == nil || !p.finalMember(call.Target) {
			return
		}

		counterpart, created := p.counterpart(call.Target)
		if created {
			stats.Synthesized++
		}
		rewritten, err := ir.RewriteCall(m, *slot, counterpart, ir.RewriteOptions{
			DispatchReceiverAsFirstArgument: true,
		})
		if err != nil {
			firstErr = fmt.Errorf("lower: staticize %s: %w", describeMember(m, call.Target), err)
			return
		}
		*slot = rewritten
		stats.CallsRewritten++
		diag.ReportInfo(r, diag.LowStaticized, rewritten.Span,
			fmt.Sprintf("call to %s lowered to %s", describeMember(m, call.Target), describeMember(m, counterpart))).
			Emit()
	})

	return stats, firstErr
}

type staticizer struct {
	m    *ir.Module
	done map[ir.FuncID]ir.FuncID
}

// finalMember reports whether calls on fn can be bound statically.
func (p *staticizer) finalMember(fn ir.FuncID) bool {
	f := p.m.Func(fn)
	if f == nil || !f.IsReal() || f.Body == nil {
		return false
	}
	if f.Flags.HasFlag(ir.FuncOpen) || f.Flags.HasFlag(ir.FuncAbstract) ||
		f.Flags.HasFlag(ir.FuncStatic) || f.Flags.HasFlag(ir.FuncConstructor) {
		return false
	}
	owner := p.m.Class(f.Owner)
	if owner == nil || owner.IsInterface() {
		return false
	}
	return p.m.ReceiverParam(fn, ir.ParamDispatch).IsValid()
}

// counterpart returns the static form of target, synthesizing it on
// first use.
func (p *staticizer) counterpart(target ir.FuncID) (ir.FuncID, bool) {
	if id, ok := p.done[target]; ok {
		return id, false
	}
	m := p.m
	orig := m.Func(target)

	// Copy everything needed out of the arena row first: the Allocate
	// below may grow the backing array and leave orig pointing at the
	// old one.
	name := m.NameOf(orig.Name) + "$static"
	span := orig.Span
	flags := orig.Flags&ir.FuncPublic | ir.FuncStatic
	owner := orig.Owner
	result := orig.Result
	typeParams := append([]ir.TypeParamID(nil), orig.TypeParams...)
	srcParams := append([]ir.ParamID(nil), orig.Params...)
	bodySpan := orig.Body.Span
	bodyRoots := append([]*ir.Expr(nil), orig.Body.Exprs...)

	id := ir.FuncID(m.Funcs.Allocate(ir.Func{
		Name:       m.Strings.Intern(name),
		Span:       span,
		Flags:      flags,
		Origin:     ir.OriginSynthetic,
		Owner:      owner,
		TypeParams: typeParams,
		Result:     result,
	}))
	p.done[target] = id
	cls := m.Class(owner)
	cls.Funcs = append(cls.Funcs, id)

	// Receivers first: an extension receiver keeps its slot, the
	// dispatch receiver becomes the leading value parameter.
	ordered := make([]ir.ParamID, 0, len(srcParams))
	for _, pid := range srcParams {
		if m.Param(pid).Kind == ir.ParamExtension {
			ordered = append(ordered, pid)
		}
	}
	for _, pid := range srcParams {
		if m.Param(pid).Kind == ir.ParamDispatch {
			ordered = append(ordered, pid)
		}
	}
	for _, pid := range srcParams {
		if m.Param(pid).Kind == ir.ParamValue {
			ordered = append(ordered, pid)
		}
	}

	remap := make(map[ir.ParamID]ir.ParamID, len(ordered))
	params := make([]ir.ParamID, 0, len(ordered))
	for idx, pid := range ordered {
		src := *m.Param(pid) // copy, the Allocate below can move the row
		kind := ir.ParamValue
		if src.Kind == ir.ParamExtension {
			kind = ir.ParamExtension
		}
		index, err := safecast.Conv[uint32](idx)
		if err != nil {
			panic(fmt.Errorf("param index overflow: %w", err))
		}
		nid := ir.ParamID(m.Params.Allocate(ir.Param{
			Name:       src.Name,
			Span:       src.Span,
			Kind:       kind,
			Owner:      id,
			Index:      index,
			Type:       src.Type,
			IsVararg:   src.IsVararg,
			VarargElem: src.VarargElem,
			HasDefault: src.HasDefault,
		}))
		remap[pid] = nid
		params = append(params, nid)
	}

	cl := &cloner{remap: remap, memo: make(map[*ir.Expr]*ir.Expr)}
	for _, pid := range ordered {
		if def := m.Param(pid).Default; def != nil {
			m.Param(remap[pid]).Default = cl.expr(def)
		}
	}

	body := &ir.Block{Span: bodySpan}
	for _, root := range bodyRoots {
		body.Exprs = append(body.Exprs, cl.expr(root))
	}
	fn := m.Func(id)
	fn.Params = params
	fn.Body = body
	return id, true
}

// cloner deep-copies expression trees, rewriting parameter reads
// through remap. Shared nodes stay shared in the copy: a clone is
// registered in memo before its children are filled, which also keeps
// the walk from spinning on a cyclic graph.
type cloner struct {
	remap map[ir.ParamID]ir.ParamID
	memo  map[*ir.Expr]*ir.Expr
}

func (c *cloner) expr(e *ir.Expr) *ir.Expr {
	if e == nil {
		return nil
	}
	if dup, ok := c.memo[e]; ok {
		return dup
	}
	dup := &ir.Expr{Kind: e.Kind, Type: e.Type, Span: e.Span}
	c.memo[e] = dup
	switch d := e.Data.(type) {
	case ir.ConstData:
		dup.Data = d
	case ir.GetValueData:
		if to, ok := c.remap[d.Param]; ok {
			d.Param = to
		}
		dup.Data = d
	case ir.GetFieldData:
		d.Receiver = c.expr(d.Receiver)
		dup.Data = d
	case ir.ArrayLitData:
		elems := make([]*ir.Expr, len(d.Elems))
		for i, el := range d.Elems {
			elems[i] = c.expr(el)
		}
		dup.Data = ir.ArrayLitData{Elem: d.Elem, Elems: elems}
	case *ir.CallData:
		nd := &ir.CallData{
			Target:   d.Target,
			TypeArgs: append([]types.TypeID(nil), d.TypeArgs...),
		}
		nd.Dispatch = c.expr(d.Dispatch)
		nd.Extension = c.expr(d.Extension)
		args := make([]*ir.Expr, len(d.Args))
		for i, a := range d.Args {
			args[i] = c.expr(a)
		}
		nd.Args = args
		dup.Data = nd
	default:
		dup.Data = e.Data
	}
	return dup
}
