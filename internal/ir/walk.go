package ir

// VisitExprs invokes f on every expression slot reachable from slot,
// parents before children. f may replace *slot with a new expression;
// the children of the replacement are what get visited afterwards.
func VisitExprs(slot **Expr, f func(**Expr)) {
	if slot == nil || *slot == nil {
		return
	}
	f(slot)
	e := *slot
	if e == nil {
		return
	}
	switch d := e.Data.(type) {
	case GetFieldData:
		VisitExprs(&d.Receiver, f)
		// d is a copy, the receiver pointer must be written back.
		e.Data = d
	case ArrayLitData:
		for i := range d.Elems {
			VisitExprs(&d.Elems[i], f)
		}
	case *CallData:
		VisitExprs(&d.Dispatch, f)
		VisitExprs(&d.Extension, f)
		for i := range d.Args {
			VisitExprs(&d.Args[i], f)
		}
	}
}

// WalkExprs is the read-only form of VisitExprs.
func WalkExprs(e *Expr, f func(*Expr)) {
	VisitExprs(&e, func(slot **Expr) { f(*slot) })
}

// VisitBody applies VisitExprs to every top-level expression of the
// function body. Functions without a body are a no-op.
func VisitBody(fn *Func, f func(**Expr)) {
	if fn == nil || fn.Body == nil {
		return
	}
	for i := range fn.Body.Exprs {
		VisitExprs(&fn.Body.Exprs[i], f)
	}
}
