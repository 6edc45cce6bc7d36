package ir_test

import (
	"strings"
	"testing"

	"swell/internal/ir"
)

func TestCollectRealOverridesRealCollectsToItself(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassOpen)
	speak := newMethod(b, animal, "speak", ir.FuncOpen)
	m := b.Module()

	got, err := ir.CollectRealOverrides(m, speak)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(got) != 1 || got[0] != speak {
		t.Errorf("a real function collects to itself, got %v", got)
	}
}

func TestCollectRealOverridesChain(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassOpen)
	dog := newClass(b, "Dog", ir.ClassKindClass, ir.ClassOpen, animal)
	puppy := newClass(b, "Puppy", ir.ClassKindClass, 0, dog)
	animalSpeak := newMethod(b, animal, "speak", ir.FuncOpen)
	dogSpeak := newMethod(b, dog, "speak", ir.FuncOpen|ir.FuncOverride, animalSpeak)
	puppySpeak := b.NewFakeOverride(puppy, []ir.FuncID{dogSpeak})
	m := b.Module()

	got, err := ir.CollectRealOverrides(m, puppySpeak)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(got) != 1 || got[0] != dogSpeak {
		t.Errorf("expected [Dog.speak], got %v", got)
	}
}

func TestCollectRealOverridesDiamondDedup(t *testing.T) {
	b := ir.NewBuilder("zoo")
	top := newClass(b, "Top", ir.ClassKindInterface, 0)
	left := newClass(b, "Left", ir.ClassKindInterface, 0, top)
	right := newClass(b, "Right", ir.ClassKindInterface, 0, top)
	bottom := newClass(b, "Bottom", ir.ClassKindClass, 0, left, right)

	topFoo := newMethod(b, top, "foo", ir.FuncAbstract)
	leftFoo := b.NewFakeOverride(left, []ir.FuncID{topFoo})
	rightFoo := b.NewFakeOverride(right, []ir.FuncID{topFoo})
	bottomFoo := b.NewFakeOverride(bottom, []ir.FuncID{leftFoo, rightFoo})
	m := b.Module()

	got, err := ir.CollectRealOverrides(m, bottomFoo)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(got) != 1 || got[0] != topFoo {
		t.Errorf("the diamond ancestor must appear exactly once, got %v", got)
	}
}

func TestCollectRealOverridesDropsSubsumed(t *testing.T) {
	b := ir.NewBuilder("zoo")
	base := newClass(b, "Base", ir.ClassKindClass, ir.ClassOpen)
	mid := newClass(b, "Mid", ir.ClassKindClass, ir.ClassOpen, base)
	leaf := newClass(b, "Leaf", ir.ClassKindClass, 0, mid)

	baseFoo := newMethod(b, base, "foo", ir.FuncOpen)
	midFoo := newMethod(b, mid, "foo", ir.FuncOpen|ir.FuncOverride, baseFoo)
	// The stub lists both ancestors, the base one first.
	leafFoo := b.NewFakeOverride(leaf, []ir.FuncID{baseFoo, midFoo})
	m := b.Module()

	got, err := ir.CollectRealOverrides(m, leafFoo)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(got) != 1 || got[0] != midFoo {
		t.Errorf("Base.foo is overridden by Mid.foo and must be dropped, got %v", got)
	}
}

func TestCollectRealOverridesKeepsUnrelatedCandidates(t *testing.T) {
	b := ir.NewBuilder("zoo")
	left := newClass(b, "Left", ir.ClassKindInterface, 0)
	right := newClass(b, "Right", ir.ClassKindInterface, 0)
	both := newClass(b, "Both", ir.ClassKindClass, 0, left, right)

	leftFoo := newMethod(b, left, "foo", 0)
	rightFoo := newMethod(b, right, "foo", 0)
	bothFoo := b.NewFakeOverride(both, []ir.FuncID{leftFoo, rightFoo})
	m := b.Module()

	got, err := ir.CollectRealOverrides(m, bothFoo)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(got) != 2 || got[0] != leftFoo || got[1] != rightFoo {
		t.Errorf("expected [Left.foo Right.foo] in encounter order, got %v", got)
	}
}

func TestCollectRealOverridesDanglingReference(t *testing.T) {
	b := ir.NewBuilder("zoo")
	cls := newClass(b, "Broken", ir.ClassKindClass, 0)
	m := b.Module()
	stub := b.NewFunc(cls, "foo", ir.FuncOverride, ir.OriginFakeOverride, m.Types.Builtins().Unit, sp(0, 0))
	b.SetOverridden(stub, []ir.FuncID{ir.FuncID(9999)})

	_, err := ir.CollectRealOverrides(m, stub)
	if err == nil {
		t.Fatal("expected an error for a dangling override reference")
	}
	if !strings.Contains(err.Error(), "missing declaration") {
		t.Errorf("error should name the missing declaration, got %q", err)
	}
}

func TestCollectRealOverridesCycleError(t *testing.T) {
	b := ir.NewBuilder("zoo")
	a := newClass(b, "A", ir.ClassKindClass, ir.ClassOpen)
	bc := newClass(b, "B", ir.ClassKindClass, ir.ClassOpen, a)
	c := newClass(b, "C", ir.ClassKindClass, 0, bc)

	realFoo := newMethod(b, a, "foo", ir.FuncOpen)
	fakeFoo := b.NewFakeOverride(bc, []ir.FuncID{realFoo})
	// Malformed input: the real function claims to override its own stub.
	b.SetOverridden(realFoo, []ir.FuncID{fakeFoo})
	start := b.NewFakeOverride(c, []ir.FuncID{realFoo})
	m := b.Module()

	_, err := ir.CollectRealOverrides(m, start)
	if err == nil {
		t.Fatal("expected an error for a cyclic override graph")
	}
	if !strings.Contains(err.Error(), "override cycle") {
		t.Errorf("error should mention the cycle, got %q", err)
	}
}

func TestResolveFakeOverrideRealResolvesToItself(t *testing.T) {
	b := ir.NewBuilder("zoo")
	animal := newClass(b, "Animal", ir.ClassKindClass, 0)
	speak := newMethod(b, animal, "speak", 0)
	m := b.Module()

	got, err := ir.ResolveFakeOverride(m, speak)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != speak {
		t.Errorf("a real function resolves to itself, got %v", got)
	}
}

func TestResolveFakeOverrideUniqueImplementation(t *testing.T) {
	b := ir.NewBuilder("zoo")
	speaker := newClass(b, "Speaker", ir.ClassKindInterface, 0)
	impl := newClass(b, "Impl", ir.ClassKindClass, ir.ClassOpen)
	sub := newClass(b, "Sub", ir.ClassKindClass, 0, impl, speaker)

	abstractSpeak := newMethod(b, speaker, "speak", ir.FuncAbstract)
	realSpeak := newMethod(b, impl, "speak", ir.FuncOpen)
	stub := b.NewFakeOverride(sub, []ir.FuncID{abstractSpeak, realSpeak})
	m := b.Module()

	got, err := ir.ResolveFakeOverride(m, stub)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != realSpeak {
		t.Errorf("expected the unique non-abstract candidate, got %v", got)
	}
}

func TestResolveFakeOverrideAmbiguousIsAbsent(t *testing.T) {
	b := ir.NewBuilder("zoo")
	left := newClass(b, "Left", ir.ClassKindInterface, 0)
	right := newClass(b, "Right", ir.ClassKindInterface, 0)
	both := newClass(b, "Both", ir.ClassKindClass, 0, left, right)

	leftFoo := newMethod(b, left, "foo", 0)
	rightFoo := newMethod(b, right, "foo", 0)
	stub := b.NewFakeOverride(both, []ir.FuncID{leftFoo, rightFoo})
	m := b.Module()

	got, err := ir.ResolveFakeOverride(m, stub)
	if err != nil {
		t.Fatalf("ambiguity is not an error: %v", err)
	}
	if got != ir.NoFuncID {
		t.Errorf("two concrete implementations must resolve to absent, got %v", got)
	}
}

func TestResolveFakeOverrideAllAbstractIsAbsent(t *testing.T) {
	b := ir.NewBuilder("zoo")
	speaker := newClass(b, "Speaker", ir.ClassKindInterface, 0)
	sub := newClass(b, "Sub", ir.ClassKindClass, ir.ClassAbstract, speaker)

	abstractSpeak := newMethod(b, speaker, "speak", ir.FuncAbstract)
	stub := b.NewFakeOverride(sub, []ir.FuncID{abstractSpeak})
	m := b.Module()

	got, err := ir.ResolveFakeOverride(m, stub)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != ir.NoFuncID {
		t.Errorf("no concrete implementation means absent, got %v", got)
	}
}

func TestResolveFakeOverrideInvalidHandle(t *testing.T) {
	m := ir.NewBuilder("zoo").Module()
	got, err := ir.ResolveFakeOverride(m, ir.NoFuncID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != ir.NoFuncID {
		t.Errorf("an invalid handle resolves to absent, got %v", got)
	}
}

func TestCollectRealFieldOverridesDiamond(t *testing.T) {
	b := ir.NewBuilder("zoo")
	top := newClass(b, "Top", ir.ClassKindClass, ir.ClassOpen)
	left := newClass(b, "Left", ir.ClassKindClass, ir.ClassOpen, top)
	right := newClass(b, "Right", ir.ClassKindClass, ir.ClassOpen, top)
	bottom := newClass(b, "Bottom", ir.ClassKindClass, 0, left, right)
	m := b.Module()

	topName := b.NewField(top, "name", m.Types.Builtins().String, ir.FieldPublic, ir.OriginSource, sp(0, 0))
	leftName := b.NewFakeFieldOverride(left, []ir.FieldID{topName})
	rightName := b.NewFakeFieldOverride(right, []ir.FieldID{topName})
	bottomName := b.NewFakeFieldOverride(bottom, []ir.FieldID{leftName, rightName})

	got, err := ir.CollectRealFieldOverrides(m, bottomName)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(got) != 1 || got[0] != topName {
		t.Errorf("the diamond ancestor field must appear exactly once, got %v", got)
	}
}

func TestResolveFakeFieldOverride(t *testing.T) {
	b := ir.NewBuilder("zoo")
	base := newClass(b, "Base", ir.ClassKindClass, ir.ClassOpen)
	sub := newClass(b, "Sub", ir.ClassKindClass, 0, base)
	m := b.Module()

	baseName := b.NewField(base, "name", m.Types.Builtins().String, ir.FieldPublic, ir.OriginSource, sp(0, 0))
	stub := b.NewFakeFieldOverride(sub, []ir.FieldID{baseName})

	got, err := ir.ResolveFakeFieldOverride(m, stub)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != baseName {
		t.Errorf("expected the unique real field, got %v", got)
	}
}

func TestResolveFakeFieldOverrideAmbiguousIsAbsent(t *testing.T) {
	b := ir.NewBuilder("zoo")
	left := newClass(b, "Left", ir.ClassKindClass, ir.ClassOpen)
	right := newClass(b, "Right", ir.ClassKindClass, ir.ClassOpen)
	both := newClass(b, "Both", ir.ClassKindClass, 0, left, right)
	m := b.Module()

	leftName := b.NewField(left, "name", m.Types.Builtins().String, 0, ir.OriginSource, sp(0, 0))
	rightName := b.NewField(right, "name", m.Types.Builtins().String, 0, ir.OriginSource, sp(0, 0))
	stub := b.NewFakeFieldOverride(both, []ir.FieldID{leftName, rightName})

	got, err := ir.ResolveFakeFieldOverride(m, stub)
	if err != nil {
		t.Fatalf("ambiguity is not an error: %v", err)
	}
	if got != ir.NoFieldID {
		t.Errorf("two real fields must resolve to absent, got %v", got)
	}
}
