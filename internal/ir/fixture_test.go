package ir_test

import (
	"swell/internal/ir"
	"swell/internal/source"
)

// sp builds a span in the default test file.
func sp(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

// newClass declares a class and wires its direct supertypes.
func newClass(b *ir.Builder, name string, kind ir.ClassKind, flags ir.ClassFlags, supers ...ir.ClassID) ir.ClassID {
	id := b.NewClass(name, kind, flags, sp(0, uint32(len(name))))
	m := b.Module()
	for _, s := range supers {
		b.AddSupertype(id, m.Class(s).Type)
	}
	return id
}

// newMethod declares a member function with a dispatch receiver typed as
// the owner and an attached trivial body unless the flags mark it
// abstract.
func newMethod(b *ir.Builder, owner ir.ClassID, name string, flags ir.FuncFlags, overridden ...ir.FuncID) ir.FuncID {
	m := b.Module()
	result := m.Types.Builtins().String
	fn := b.NewFunc(owner, name, flags, ir.OriginSource, result, sp(0, uint32(len(name))))
	b.AddDispatchReceiver(fn, m.Class(owner).Type, sp(0, 0))
	if len(overridden) > 0 {
		b.SetOverridden(fn, overridden)
	}
	if !flags.HasFlag(ir.FuncAbstract) {
		ret := ir.NewStringConst(m.Strings.Intern(name), result, sp(0, 0))
		b.SetBody(fn, &ir.Block{Exprs: []*ir.Expr{ret}})
	}
	return fn
}

// intArg builds an int literal argument.
func intArg(m *ir.Module, v int64) *ir.Expr {
	return ir.NewIntConst(v, m.Types.Builtins().Int, sp(0, 0))
}

// instanceOf builds a receiver expression of the class's type. The
// binder only looks at the static type, a unit literal carrying it is
// enough for tests.
func instanceOf(m *ir.Module, cls ir.ClassID) *ir.Expr {
	return ir.NewUnitConst(m.Class(cls).Type, sp(0, 0))
}
