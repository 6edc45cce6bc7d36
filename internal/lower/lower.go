// Package lower hosts the module-to-module passes that run between
// loading a snapshot and writing it back: devirtualization of calls
// aimed at fake overrides and lowering of member calls to static form.
// Passes replace call sites through the expression walker and only ever
// append to the declaration arenas, so handles taken before a pass stay
// valid after it.
package lower

import "swell/internal/ir"

// Stats counts what a pass did to a module.
type Stats struct {
	// CallsExamined is the number of call sites the pass looked at.
	CallsExamined int
	// CallsRewritten is the number of call sites re-targeted.
	CallsRewritten int
	// Ambiguous counts fake-override targets without a unique real
	// implementation, left intact.
	Ambiguous int
	// Synthesized counts declarations the pass added to the module.
	Synthesized int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.CallsExamined += other.CallsExamined
	s.CallsRewritten += other.CallsRewritten
	s.Ambiguous += other.Ambiguous
	s.Synthesized += other.Synthesized
}

// visitModuleExprs invokes f on every expression slot of the module:
// function body roots and their subtrees, field initializers, and
// parameter defaults. Arena lengths are re-read every iteration, so
// declarations appended by f are walked too. Initializers and defaults
// go through a local slot and are stored back afterwards: f may append
// to the arena, and a pointer into the old backing array would lose the
// write.
func visitModuleExprs(m *ir.Module, f func(**ir.Expr)) {
	for i := uint32(1); i <= m.Funcs.Len(); i++ {
		ir.VisitBody(m.Func(ir.FuncID(i)), f)
	}
	for i := uint32(1); i <= m.Fields.Len(); i++ {
		id := ir.FieldID(i)
		init := m.Field(id).Init
		ir.VisitExprs(&init, f)
		m.Field(id).Init = init
	}
	for i := uint32(1); i <= m.Params.Len(); i++ {
		id := ir.ParamID(i)
		def := m.Param(id).Default
		ir.VisitExprs(&def, f)
		m.Param(id).Default = def
	}
}
