package ir

import (
	"errors"
	"fmt"

	"swell/internal/diag"
	"swell/internal/source"
	"swell/internal/types"
)

// validationIssue is one structural defect found in a module graph.
type validationIssue struct {
	code diag.Code
	span source.Span
	msg  string
}

type validator struct {
	m      *Module
	issues []validationIssue
}

func (v *validator) flag(code diag.Code, span source.Span, format string, args ...any) {
	v.issues = append(v.issues, validationIssue{
		code: code,
		span: span,
		msg:  fmt.Sprintf(format, args...),
	})
}

// Validate checks the structural invariants of the module graph:
// supertype references resolve to live classes and form no cycles,
// override lists point at live declarations of a compatible kind,
// parameter lists keep receivers first with at most one trailing
// vararg, and stored call sites match the shape of their targets.
// Every defect names the offending declaration; the result is all of
// them joined, nil when the module is sound.
func Validate(m *Module) error {
	issues := validateModule(m)
	if len(issues) == 0 {
		return nil
	}
	errs := make([]error, 0, len(issues))
	for _, it := range issues {
		errs = append(errs, errors.New(it.msg))
	}
	return errors.Join(errs...)
}

// ValidateReport runs the same checks as Validate and emits each defect
// as an error diagnostic. It reports whether the module passed.
func ValidateReport(m *Module, r diag.Reporter) bool {
	issues := validateModule(m)
	for _, it := range issues {
		diag.ReportError(r, it.code, it.span, it.msg).Emit()
	}
	return len(issues) == 0
}

func validateModule(m *Module) []validationIssue {
	v := &validator{m: m}
	for i := uint32(1); i <= m.Classes.Len(); i++ {
		v.checkClass(ClassID(i))
	}
	for i := uint32(1); i <= m.Funcs.Len(); i++ {
		v.checkFunc(FuncID(i))
	}
	for i := uint32(1); i <= m.Fields.Len(); i++ {
		v.checkField(FieldID(i))
	}
	for i := uint32(1); i <= m.Funcs.Len(); i++ {
		v.checkBody(FuncID(i))
	}
	return v.issues
}

func (v *validator) checkClass(id ClassID) {
	m := v.m
	cls := m.Class(id)
	name := m.ClassName(id)

	for _, super := range cls.Supertypes {
		t, ok := m.Types.Lookup(super)
		if !ok {
			v.flag(diag.IRDanglingRef, cls.Span,
				"ir: class %s names an unknown supertype", name)
			continue
		}
		if t.Kind != types.KindClass {
			v.flag(diag.IRSupertypeNotClass, cls.Span,
				"ir: class %s extends %s which is not a class type", name, types.Label(m.Types, super))
			continue
		}
		if !m.ClassOfType(super).IsValid() {
			v.flag(diag.IRDanglingRef, cls.Span,
				"ir: class %s extends %s whose declaration is missing", name, types.Label(m.Types, super))
		}
	}
	if hasSupertypeCycle(m, id) {
		v.flag(diag.IRSupertypeCycle, cls.Span,
			"ir: class %s sits on a supertype cycle", name)
	}

	for _, fn := range cls.Funcs {
		f := m.Func(fn)
		if f == nil {
			v.flag(diag.IRDanglingRef, cls.Span,
				"ir: class %s lists a missing member %s", name, FuncKey(fn))
			continue
		}
		if f.Owner != id {
			v.flag(diag.IRDanglingRef, cls.Span,
				"ir: class %s lists %s which is owned by %s", name, describeFunc(m, fn), m.ClassName(f.Owner))
		}
	}
	for _, fld := range cls.Fields {
		f := m.Field(fld)
		if f == nil {
			v.flag(diag.IRDanglingRef, cls.Span,
				"ir: class %s lists a missing field %s", name, FieldKey(fld))
			continue
		}
		if f.Owner != id {
			v.flag(diag.IRDanglingRef, cls.Span,
				"ir: class %s lists %s which is owned by %s", name, describeField(m, fld), m.ClassName(f.Owner))
		}
	}
}

func (v *validator) checkFunc(id FuncID) {
	m := v.m
	fn := m.Func(id)
	name := describeFunc(m, id)

	if fn.Owner != NoClassID && m.Class(fn.Owner) == nil {
		v.flag(diag.IRDanglingRef, fn.Span,
			"ir: %s belongs to a missing class %s", name, ClassKey(fn.Owner))
	}

	v.checkParams(id, fn, name)

	if fn.IsAbstract() && fn.Body != nil {
		v.flag(diag.IRAbstractWithBody, fn.Span,
			"ir: abstract function %s has a body", name)
	}
	if fn.IsFakeOverride() && fn.Body != nil {
		v.flag(diag.IRFakeOverrideHasBody, fn.Span,
			"ir: fake override %s has a body", name)
	}
	if fn.IsFakeOverride() && len(fn.Overridden) == 0 {
		v.flag(diag.IRDanglingRef, fn.Span,
			"ir: fake override %s overrides nothing", name)
	}
	if fn.Flags.HasFlag(FuncConstructor) && (fn.Flags.HasFlag(FuncOverride) || len(fn.Overridden) > 0) {
		v.flag(diag.IRConstructorOverride, fn.Span,
			"ir: constructor %s participates in overriding", name)
	}
	if fn.Flags.HasFlag(FuncStatic) && (fn.Flags.HasFlag(FuncOverride) || len(fn.Overridden) > 0) {
		v.flag(diag.IROverrideKindMismatch, fn.Span,
			"ir: static function %s participates in overriding", name)
	}

	for _, overridden := range fn.Overridden {
		if overridden == id {
			v.flag(diag.ResOverrideCycle, fn.Span,
				"ir: %s overrides itself", name)
			continue
		}
		target := m.Func(overridden)
		if target == nil {
			v.flag(diag.IRDanglingRef, fn.Span,
				"ir: %s overrides a missing declaration %s", name, FuncKey(overridden))
			continue
		}
		if target.Flags.HasFlag(FuncConstructor) {
			v.flag(diag.IRConstructorOverride, fn.Span,
				"ir: %s overrides constructor %s", name, describeFunc(m, overridden))
		}
		if target.Flags.HasFlag(FuncStatic) {
			v.flag(diag.IROverrideKindMismatch, fn.Span,
				"ir: %s overrides static function %s", name, describeFunc(m, overridden))
		}
	}
}

func (v *validator) checkParams(id FuncID, fn *Func, name string) {
	m := v.m
	seenValue := false
	seenKind := [3]bool{}
	for i, pid := range fn.Params {
		p := m.Param(pid)
		if p == nil {
			v.flag(diag.IRDanglingRef, fn.Span,
				"ir: %s lists a missing parameter %d", name, i)
			continue
		}
		if p.Owner != id {
			v.flag(diag.IRDanglingRef, p.Span,
				"ir: parameter %s of %s is owned by another function", m.NameOf(p.Name), name)
		}
		if int(p.Index) != i {
			v.flag(diag.IRDanglingRef, p.Span,
				"ir: parameter %s of %s records index %d at position %d", m.NameOf(p.Name), name, p.Index, i)
		}
		switch p.Kind {
		case ParamDispatch:
			if i != 0 {
				v.flag(diag.IRReceiverOrder, p.Span,
					"ir: dispatch receiver of %s is not the first parameter", name)
			}
		case ParamExtension:
			if seenValue {
				v.flag(diag.IRReceiverOrder, p.Span,
					"ir: extension receiver of %s follows a value parameter", name)
			}
		case ParamValue:
			seenValue = true
		}
		if p.IsReceiver() {
			if seenKind[p.Kind] {
				v.flag(diag.IRReceiverOrder, p.Span,
					"ir: %s declares a second %s receiver", name, p.Kind)
			}
			seenKind[p.Kind] = true
			if p.HasDefault {
				v.flag(diag.IRDefaultOnReceiver, p.Span,
					"ir: %s receiver of %s carries a default", p.Kind, name)
			}
		}
		if p.IsVararg {
			if p.IsReceiver() {
				v.flag(diag.IRVarargNotLast, p.Span,
					"ir: %s receiver of %s is marked vararg", p.Kind, name)
			} else if i != len(fn.Params)-1 {
				v.flag(diag.IRVarargNotLast, p.Span,
					"ir: vararg parameter %s of %s is not last", m.NameOf(p.Name), name)
			}
			if p.VarargElem == types.NoTypeID {
				v.flag(diag.IRVarargElemMissing, p.Span,
					"ir: vararg parameter %s of %s has no element type", m.NameOf(p.Name), name)
			}
		}
	}
}

func (v *validator) checkField(id FieldID) {
	m := v.m
	fld := m.Field(id)
	name := describeField(m, id)

	if fld.Owner != NoClassID && m.Class(fld.Owner) == nil {
		v.flag(diag.IRDanglingRef, fld.Span,
			"ir: %s belongs to a missing class %s", name, ClassKey(fld.Owner))
	}
	if fld.IsFakeOverride() && fld.Init != nil {
		v.flag(diag.IRFakeOverrideHasBody, fld.Span,
			"ir: fake override %s has an initializer", name)
	}
	if fld.IsFakeOverride() && len(fld.Overridden) == 0 {
		v.flag(diag.IRDanglingRef, fld.Span,
			"ir: fake override %s overrides nothing", name)
	}
	if fld.Flags.HasFlag(FieldStatic) && len(fld.Overridden) > 0 {
		v.flag(diag.IROverrideKindMismatch, fld.Span,
			"ir: static field %s participates in overriding", name)
	}
	for _, overridden := range fld.Overridden {
		if overridden == id {
			v.flag(diag.ResOverrideCycle, fld.Span,
				"ir: %s overrides itself", name)
			continue
		}
		target := m.Field(overridden)
		if target == nil {
			v.flag(diag.IRDanglingRef, fld.Span,
				"ir: %s overrides a missing declaration %s", name, FieldKey(overridden))
			continue
		}
		if target.Flags.HasFlag(FieldStatic) {
			v.flag(diag.IROverrideKindMismatch, fld.Span,
				"ir: %s overrides static field %s", name, describeField(m, overridden))
		}
	}
}

// checkBody verifies that stored call sites agree with the shape of
// their targets. Deeper expression wellformedness stays with the front
// end.
func (v *validator) checkBody(id FuncID) {
	m := v.m
	fn := m.Func(id)
	VisitBody(fn, func(slot **Expr) {
		call, ok := (*slot).AsCall()
		if !ok {
			return
		}
		span := (*slot).Span
		tgt := m.Func(call.Target)
		if tgt == nil {
			v.flag(diag.IRDanglingRef, span,
				"ir: call targets a missing function %s", FuncKey(call.Target))
			return
		}
		tname := describeFunc(m, call.Target)
		if call.Dispatch != nil && !m.ReceiverParam(call.Target, ParamDispatch).IsValid() {
			v.flag(diag.IRCallArity, span,
				"ir: call supplies a dispatch receiver but %s declares none", tname)
		}
		if call.Dispatch == nil && m.ReceiverParam(call.Target, ParamDispatch).IsValid() {
			v.flag(diag.IRCallArity, span,
				"ir: call omits the dispatch receiver of %s", tname)
		}
		if call.Extension != nil && !m.ReceiverParam(call.Target, ParamExtension).IsValid() {
			v.flag(diag.IRCallArity, span,
				"ir: call supplies an extension receiver but %s declares none", tname)
		}
		if call.Extension == nil && m.ReceiverParam(call.Target, ParamExtension).IsValid() {
			v.flag(diag.IRCallArity, span,
				"ir: call omits the extension receiver of %s", tname)
		}
		if n := len(m.ValueParams(call.Target)); len(call.Args) > n {
			v.flag(diag.IRCallArity, span,
				"ir: call passes %d arguments to %s which takes %d", len(call.Args), tname, n)
		}
		if len(call.TypeArgs) != len(tgt.TypeParams) {
			v.flag(diag.IRTypeArgArity, span,
				"ir: call passes %d type arguments to %s which declares %d type parameters",
				len(call.TypeArgs), tname, len(tgt.TypeParams))
		}
	})
}
