package ir_test

import (
	"bytes"
	"strings"
	"testing"

	"swell/internal/ir"
)

func TestDumpModule(t *testing.T) {
	b := ir.NewBuilder("zoo")
	b.AddFile("src/zoo.sw")
	m := b.Module()
	strT := m.Types.Builtins().String

	animal := newClass(b, "Animal", ir.ClassKindClass, ir.ClassPublic|ir.ClassAbstract|ir.ClassOpen)
	dog := newClass(b, "Dog", ir.ClassKindClass, ir.ClassPublic, animal)
	b.NewField(animal, "name", strT, ir.FieldPublic, ir.OriginSource, sp(0, 4))
	animalSpeak := newMethod(b, animal, "speak", ir.FuncPublic|ir.FuncAbstract|ir.FuncOpen)
	dogSpeak := newMethod(b, dog, "speak", ir.FuncPublic|ir.FuncOverride, animalSpeak)
	stubbed := newClass(b, "Stray", ir.ClassKindClass, 0, dog)
	b.NewFakeOverride(stubbed, []ir.FuncID{dogSpeak})

	var buf bytes.Buffer
	if err := ir.Dump(&buf, m); err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"module zoo",
		"file src/zoo.sw",
		"pub abstract open class Animal",
		"pub class Dog : Animal",
		"pub field name: string",
		"fn speak",
		"override of Animal.speak",
		"<fake_override>",
		"[dispatch] this: Animal",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump should contain %q\n%s", want, out)
		}
	}
}

func TestDumpCallExpression(t *testing.T) {
	b := ir.NewBuilder("demo")
	m := b.Module()
	strT := m.Types.Builtins().String

	host := newClass(b, "Host", ir.ClassKindClass, 0)
	greet := b.NewFunc(host, "greet", ir.FuncPublic, ir.OriginSource, strT, sp(0, 5))
	b.AddDispatchReceiver(greet, m.Class(host).Type, sp(0, 0))
	b.AddParam(greet, "name", strT, sp(0, 0))

	caller := b.NewFunc(ir.NoClassID, "main", 0, ir.OriginSource, m.Types.Builtins().Unit, sp(0, 4))
	call := b.NewCall(greet, strT, sp(0, 12), ir.CallSpec{
		Dispatch: instanceOf(m, host),
		Values:   []*ir.Expr{ir.NewStringConst(m.Strings.Intern("bob"), strT, sp(0, 3))},
	})
	b.SetBody(caller, &ir.Block{Exprs: []*ir.Expr{call}})

	var buf bytes.Buffer
	if err := ir.Dump(&buf, m); err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "call Host.greet([dispatch] (), \"bob\")") {
		t.Errorf("dump should render the call with receiver and arguments\n%s", out)
	}
	if !strings.Contains(out, "fn main() -> ()") {
		t.Errorf("dump should render the caller signature\n%s", out)
	}
}
