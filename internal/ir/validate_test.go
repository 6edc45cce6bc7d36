package ir_test

import (
	"strings"
	"testing"

	"swell/internal/diag"
	"swell/internal/ir"
	"swell/internal/types"
)

func TestValidateAcceptsWellFormedModule(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassOpen)
	dog := newClass(b, "Dog", ir.ClassKindClass, 0, animal)
	animalSpeak := newMethod(b, animal, "speak", ir.FuncOpen)
	newMethod(b, dog, "speak", ir.FuncOpen|ir.FuncOverride, animalSpeak)
	m := b.Module()

	if err := ir.Validate(m); err != nil {
		t.Fatalf("a well-formed module must validate: %v", err)
	}

	bag := diag.NewBag(16)
	if !ir.ValidateReport(m, diag.BagReporter{Bag: bag}) {
		t.Error("ValidateReport must agree with Validate")
	}
	if bag.Len() != 0 {
		t.Errorf("no diagnostics expected, got %d", bag.Len())
	}
}

func TestValidateSupertypeNotClass(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, 0)
	m := b.Module()
	b.AddSupertype(animal, m.Types.Builtins().Int)

	err := ir.Validate(m)
	if err == nil {
		t.Fatal("an int supertype must be rejected")
	}
	if !strings.Contains(err.Error(), "not a class type") {
		t.Errorf("unexpected error: %v", err)
	}

	bag := diag.NewBag(16)
	ir.ValidateReport(m, diag.BagReporter{Bag: bag})
	if bag.Len() != 1 || bag.Items()[0].Code != diag.IRSupertypeNotClass {
		t.Errorf("expected one IRSupertypeNotClass diagnostic, got %v", bag.Items())
	}
}

func TestValidateSupertypeCycle(t *testing.T) {
	b := ir.NewBuilder("zoo")
	x := newClass(b, "X", ir.ClassKindClass, 0)
	y := newClass(b, "Y", ir.ClassKindClass, 0, x)
	m := b.Module()
	b.AddSupertype(x, m.Class(y).Type)

	err := ir.Validate(m)
	if err == nil {
		t.Fatal("a supertype cycle must be rejected")
	}
	if !strings.Contains(err.Error(), "supertype cycle") {
		t.Errorf("unexpected error: %v", err)
	}
	// Both classes sit on the cycle and both are named.
	if !strings.Contains(err.Error(), "X") || !strings.Contains(err.Error(), "Y") {
		t.Errorf("the error must name the offending classes: %v", err)
	}
}

func TestValidateAbstractWithBody(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassAbstract)
	speak := newMethod(b, animal, "speak", ir.FuncAbstract)
	m := b.Module()
	b.SetBody(speak, &ir.Block{Exprs: []*ir.Expr{ir.NewUnitConst(m.Types.Builtins().Unit, sp(0, 0))}})

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "abstract function Animal.speak has a body") {
		t.Errorf("expected an abstract-with-body error, got %v", err)
	}
}

func TestValidateFakeOverrideWithBody(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassOpen)
	dog := newClass(b, "Dog", ir.ClassKindClass, 0, animal)
	speak := newMethod(b, animal, "speak", ir.FuncOpen)
	stub := b.NewFakeOverride(dog, []ir.FuncID{speak})
	m := b.Module()
	b.SetBody(stub, &ir.Block{Exprs: []*ir.Expr{ir.NewUnitConst(m.Types.Builtins().Unit, sp(0, 0))}})

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "fake override Dog.speak has a body") {
		t.Errorf("expected a fake-override-with-body error, got %v", err)
	}
}

func TestValidateFakeOverrideWithoutTargets(t *testing.T) {
	b := ir.NewBuilder("zoo")
	dog := newClass(b, "Dog", ir.ClassKindClass, 0)
	m := b.Module()
	b.NewFunc(dog, "speak", ir.FuncOverride, ir.OriginFakeOverride, m.Types.Builtins().Unit, sp(0, 0))

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "overrides nothing") {
		t.Errorf("expected an empty-override error, got %v", err)
	}
}

func TestValidateConstructorOverride(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassOpen)
	m := b.Module()
	ctor := b.NewFunc(animal, "init", ir.FuncConstructor|ir.FuncOverride, ir.OriginSource, m.Class(animal).Type, sp(0, 0))
	_ = ctor

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "constructor Animal.init participates in overriding") {
		t.Errorf("expected a constructor-override error, got %v", err)
	}
}

func TestValidateStaticOverride(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassOpen)
	dog := newClass(b, "Dog", ir.ClassKindClass, 0, animal)
	count := newMethod(b, animal, "count", ir.FuncOpen)
	m := b.Module()
	sub := b.NewFunc(dog, "count", ir.FuncStatic, ir.OriginSource, m.Types.Builtins().Int, sp(0, 0))
	b.SetOverridden(sub, []ir.FuncID{count})

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "static function Dog.count participates in overriding") {
		t.Errorf("expected a static-override error, got %v", err)
	}
}

func TestValidateSelfOverride(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassOpen)
	speak := newMethod(b, animal, "speak", ir.FuncOpen)
	m := b.Module()
	b.SetOverridden(speak, []ir.FuncID{speak})

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "Animal.speak overrides itself") {
		t.Errorf("expected a self-override error, got %v", err)
	}

	bag := diag.NewBag(16)
	ir.ValidateReport(m, diag.BagReporter{Bag: bag})
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ResOverrideCycle {
		t.Errorf("expected one ResOverrideCycle diagnostic, got %v", bag.Items())
	}
}

func TestValidateDanglingOverride(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassOpen)
	speak := newMethod(b, animal, "speak", ir.FuncOpen|ir.FuncOverride)
	b.SetOverridden(speak, []ir.FuncID{ir.FuncID(4242)})
	m := b.Module()

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "missing declaration") {
		t.Errorf("expected a dangling-override error, got %v", err)
	}
}

func TestValidateVarargPlacement(t *testing.T) {
	b := ir.NewBuilder("zoo")
	m := b.Module()
	intT := m.Types.Builtins().Int
	holder := m.Types.Intern(types.MakeArray(intT))

	fn := b.NewFunc(ir.NoClassID, "sum", 0, ir.OriginSource, intT, sp(0, 0))
	b.AddParamWith(fn, "parts", holder, sp(0, 0), ir.ParamOptions{IsVararg: true, VarargElem: intT})
	b.AddParam(fn, "extra", intT, sp(0, 0))

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "vararg parameter parts of sum is not last") {
		t.Errorf("expected a vararg placement error, got %v", err)
	}
}

func TestValidateVarargElementMissing(t *testing.T) {
	b := ir.NewBuilder("zoo")
	m := b.Module()
	intT := m.Types.Builtins().Int
	holder := m.Types.Intern(types.MakeArray(intT))

	fn := b.NewFunc(ir.NoClassID, "sum", 0, ir.OriginSource, intT, sp(0, 0))
	b.AddParamWith(fn, "parts", holder, sp(0, 0), ir.ParamOptions{IsVararg: true})

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "no element type") {
		t.Errorf("expected a vararg element error, got %v", err)
	}
}

func TestValidateDefaultOnReceiver(t *testing.T) {
	b := ir.NewBuilder("zoo")
	host := newClass(b, "Host", ir.ClassKindClass, 0)
	m := b.Module()
	fn := b.NewFunc(host, "greet", 0, ir.OriginSource, m.Types.Builtins().Unit, sp(0, 0))
	recv := b.AddDispatchReceiver(fn, m.Class(host).Type, sp(0, 0))
	m.Param(recv).HasDefault = true

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "receiver of Host.greet carries a default") {
		t.Errorf("expected a default-on-receiver error, got %v", err)
	}
}

func TestValidateCallShape(t *testing.T) {
	b := ir.NewBuilder("zoo")
	host := newClass(b, "Host", ir.ClassKindClass, 0)
	m := b.Module()
	target := b.NewFunc(host, "greet", 0, ir.OriginSource, m.Types.Builtins().Unit, sp(0, 0))
	b.AddDispatchReceiver(target, m.Class(host).Type, sp(0, 0))

	caller := b.NewFunc(ir.NoClassID, "main", 0, ir.OriginSource, m.Types.Builtins().Unit, sp(0, 0))
	// Malformed by hand: the receiver slot is left empty and the value
	// list exceeds the target's parameter count.
	bad := ir.NewCallExpr(&ir.CallData{
		Target: target,
		Args:   []*ir.Expr{intArg(m, 1)},
	}, m.Types.Builtins().Unit, sp(0, 4))
	b.SetBody(caller, &ir.Block{Exprs: []*ir.Expr{bad}})

	err := ir.Validate(m)
	if err == nil {
		t.Fatal("a malformed call site must be rejected")
	}
	if !strings.Contains(err.Error(), "omits the dispatch receiver") {
		t.Errorf("the missing receiver must be reported: %v", err)
	}
	if !strings.Contains(err.Error(), "passes 1 arguments to Host.greet which takes 0") {
		t.Errorf("the arity violation must be reported: %v", err)
	}
}

func TestValidateCallTypeArgumentArity(t *testing.T) {
	b := ir.NewBuilder("zoo")
	m := b.Module()
	target := b.NewFunc(ir.NoClassID, "pick", 0, ir.OriginSource, m.Types.Builtins().Unit, sp(0, 0))
	b.NewFuncTypeParam(target, "T", sp(0, 0))

	caller := b.NewFunc(ir.NoClassID, "main", 0, ir.OriginSource, m.Types.Builtins().Unit, sp(0, 0))
	// Malformed by hand: no type arguments for a generic target.
	bad := ir.NewCallExpr(&ir.CallData{Target: target}, m.Types.Builtins().Unit, sp(0, 4))
	b.SetBody(caller, &ir.Block{Exprs: []*ir.Expr{bad}})

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "passes 0 type arguments to pick which declares 1") {
		t.Errorf("expected a type-argument arity error, got %v", err)
	}
}

func TestValidateCallDanglingTarget(t *testing.T) {
	b := ir.NewBuilder("zoo")
	m := b.Module()
	caller := b.NewFunc(ir.NoClassID, "main", 0, ir.OriginSource, m.Types.Builtins().Unit, sp(0, 0))
	bad := ir.NewCallExpr(&ir.CallData{Target: ir.FuncID(777)}, m.Types.Builtins().Unit, sp(0, 4))
	b.SetBody(caller, &ir.Block{Exprs: []*ir.Expr{bad}})

	err := ir.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "missing function") {
		t.Errorf("expected a dangling call target error, got %v", err)
	}
}
