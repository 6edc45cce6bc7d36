package irpack_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"swell/internal/ir"
	"swell/internal/irpack"
	"swell/internal/source"
	"swell/internal/types"
)

func sp(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

// buildPetModule assembles a module that touches every packed shape:
// class hierarchy with a fake override, a field initializer, a vararg
// function with a defaulted parameter, and call bodies that share
// argument subtrees.
func buildPetModule(t *testing.T) (*ir.Builder, *ir.Module) {
	t.Helper()
	b := ir.NewBuilder("pets")
	m := b.Module()
	b.AddFile("src/pets.sw")
	bt := m.Types.Builtins()

	animal := b.NewClass("Animal", ir.ClassKindClass, ir.ClassPublic|ir.ClassAbstract|ir.ClassOpen, sp(1, 40))
	speak := b.NewFunc(animal, "speak", ir.FuncPublic|ir.FuncAbstract|ir.FuncOpen, ir.OriginSource, bt.String, sp(2, 12))
	b.AddDispatchReceiver(speak, m.Class(animal).Type, sp(2, 3))
	nameField := b.NewField(animal, "name", bt.String, ir.FieldPublic, ir.OriginSource, sp(3, 10))
	m.Field(nameField).Init = ir.NewStringConst(m.Strings.Intern("rex"), bt.String, sp(3, 9))

	dog := b.NewClass("Dog", ir.ClassKindClass, ir.ClassPublic, sp(5, 60))
	b.AddSupertype(dog, m.Class(animal).Type)
	bark := b.NewFunc(dog, "speak", ir.FuncPublic|ir.FuncOverride, ir.OriginSource, bt.String, sp(6, 20))
	b.AddDispatchReceiver(bark, m.Class(dog).Type, sp(6, 3))
	b.SetOverridden(bark, []ir.FuncID{speak})
	b.SetBody(bark, &ir.Block{Span: sp(6, 20), Exprs: []*ir.Expr{
		ir.NewStringConst(m.Strings.Intern("woof"), bt.String, sp(6, 10)),
	}})

	cat := b.NewClass("Cat", ir.ClassKindClass, ir.ClassPublic, sp(8, 70))
	b.AddSupertype(cat, m.Class(animal).Type)
	b.NewFakeOverride(cat, []ir.FuncID{speak})

	join := b.NewFunc(ir.NoClassID, "join", ir.FuncPublic, ir.OriginSource, bt.String, sp(10, 30))
	b.AddParam(join, "sep", bt.String, sp(10, 12))
	intArr := m.Types.Intern(types.MakeArray(bt.Int))
	b.AddParamWith(join, "parts", intArr, sp(10, 18), ir.ParamOptions{IsVararg: true, VarargElem: bt.Int})

	greet := b.NewFunc(ir.NoClassID, "greet", ir.FuncPublic, ir.OriginSource, bt.Unit, sp(12, 30))
	b.AddParam(greet, "who", bt.String, sp(12, 10))
	b.AddParamWith(greet, "times", bt.Int, sp(12, 20), ir.ParamOptions{
		HasDefault: true,
		Default:    ir.NewIntConst(1, bt.Int, sp(12, 19)),
	})

	shared := ir.NewIntConst(7, bt.Int, sp(14, 5))
	callJoin := b.NewCall(join, bt.String, sp(14, 20), ir.CallSpec{
		Values: []*ir.Expr{
			ir.NewStringConst(m.Strings.Intern(", "), bt.String, sp(14, 8)),
			shared,
			shared,
		},
	})
	callGreet := b.NewCall(greet, bt.Unit, sp(15, 20), ir.CallSpec{
		Values: []*ir.Expr{ir.NewStringConst(m.Strings.Intern("bob"), bt.String, sp(15, 8)), nil},
	})
	mainFn := b.NewFunc(ir.NoClassID, "main", ir.FuncPublic, ir.OriginSource, bt.Unit, sp(14, 40))
	b.SetBody(mainFn, &ir.Block{Span: sp(14, 40), Exprs: []*ir.Expr{callJoin, callGreet}})

	return b, m
}

func dump(t *testing.T, m *ir.Module) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ir.Dump(&buf, m); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	return buf.String()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	_, m := buildPetModule(t)
	path := filepath.Join(t.TempDir(), "pets.swm")

	if err := irpack.Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := irpack.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	before, after := dump(t, m), dump(t, loaded)
	if before != after {
		t.Fatalf("round trip changed the module\nbefore:\n%s\nafter:\n%s", before, after)
	}
	if loaded.Classes.Len() != m.Classes.Len() || loaded.Funcs.Len() != m.Funcs.Len() {
		t.Fatalf("arena sizes changed: classes %d->%d funcs %d->%d",
			m.Classes.Len(), loaded.Classes.Len(), m.Funcs.Len(), loaded.Funcs.Len())
	}
	if err := ir.Validate(loaded); err != nil {
		t.Fatalf("loaded module fails validation: %v", err)
	}
}

func TestRoundTripPreservesHandles(t *testing.T) {
	_, m := buildPetModule(t)
	path := filepath.Join(t.TempDir(), "pets.swm")
	if err := irpack.Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := irpack.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	animal := loaded.FindClass("Animal")
	if !animal.IsValid() {
		t.Fatal("Animal not found after load")
	}
	dog := loaded.FindClass("Dog")
	if !dog.IsValid() {
		t.Fatal("Dog not found after load")
	}
	if !ir.IsSubclassOf(loaded, dog, animal) {
		t.Fatal("Dog is no longer a subclass of Animal after load")
	}

	cat := loaded.FindClass("Cat")
	var fake ir.FuncID
	for _, fn := range loaded.Class(cat).Funcs {
		if loaded.Func(fn).IsFakeOverride() {
			fake = fn
		}
	}
	if !fake.IsValid() {
		t.Fatal("Cat lost its fake override")
	}
	real, err := ir.CollectRealOverrides(loaded, fake)
	if err != nil {
		t.Fatalf("CollectRealOverrides: %v", err)
	}
	if len(real) != 1 || loaded.FuncName(real[0]) != "speak" {
		t.Fatalf("unexpected real overrides after load: %v", real)
	}
}

func TestRoundTripPreservesSharedSubtrees(t *testing.T) {
	_, m := buildPetModule(t)
	path := filepath.Join(t.TempDir(), "pets.swm")
	if err := irpack.Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := irpack.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	mainFn := loaded.FindFunc(ir.NoClassID, "main")
	if !mainFn.IsValid() {
		t.Fatal("main not found after load")
	}
	call, ok := loaded.Func(mainFn).Body.Exprs[0].AsCall()
	if !ok {
		t.Fatal("first body root is not a call")
	}
	holder, ok := call.Args[1].Data.(ir.ArrayLitData)
	if !ok {
		t.Fatalf("vararg holder missing, got %v", call.Args[1].Kind)
	}
	if len(holder.Elems) != 2 || holder.Elems[0] != holder.Elems[1] {
		t.Fatal("shared argument decoded into distinct nodes")
	}
}

func TestRoundTripKeepsOmittedArguments(t *testing.T) {
	_, m := buildPetModule(t)
	path := filepath.Join(t.TempDir(), "pets.swm")
	if err := irpack.Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := irpack.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	mainFn := loaded.FindFunc(ir.NoClassID, "main")
	call, ok := loaded.Func(mainFn).Body.Exprs[1].AsCall()
	if !ok {
		t.Fatal("second body root is not a call")
	}
	if len(call.Args) != 2 || call.Args[1] != nil {
		t.Fatalf("omitted argument not preserved: %v", call.Args)
	}
	if !ir.UsesDefaultArguments(loaded, call) {
		t.Fatal("call no longer reports defaulted arguments")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := irpack.Load(filepath.Join(t.TempDir(), "absent.swm"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}

func TestLoadRejectsSchemaMismatch(t *testing.T) {
	_, m := buildPetModule(t)
	snap, err := irpack.Pack(m)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	snap.Schema = irpack.SchemaVersion + 1

	path := filepath.Join(t.TempDir(), "stale.swm")
	writeSnapshot(t, path, snap)
	if _, err := irpack.Load(path); !errors.Is(err, irpack.ErrSchemaMismatch) {
		t.Fatalf("want ErrSchemaMismatch, got %v", err)
	}
}

func TestUnpackNormalizesStrings(t *testing.T) {
	b := ir.NewBuilder("norm")
	m := b.Module()
	b.NewClass("café", ir.ClassKindClass, ir.ClassPublic, sp(1, 10))

	snap, err := irpack.Pack(m)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	id, ok := m.Strings.LookupID("café")
	if !ok {
		t.Fatal("class name not interned")
	}
	// Rewrite the row the way a front end using decomposed text would.
	snap.Strings[id] = "café"

	loaded, err := irpack.Unpack(snap)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	got, ok := loaded.Strings.Lookup(id)
	if !ok || got != "café" {
		t.Fatalf("want the composed form back, got %q", got)
	}
	if !loaded.FindClass("café").IsValid() {
		t.Fatal("class not findable under the composed name")
	}
}

func TestUnpackKeepsCollidingStringsApart(t *testing.T) {
	_, m := buildPetModule(t)
	snap, err := irpack.Pack(m)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	composed := "café"
	decomposed := "café"
	snap.Strings = append(snap.Strings, composed, decomposed)

	loaded, err := irpack.Unpack(snap)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if loaded.Strings.Len() != len(snap.Strings) {
		t.Fatalf("colliding rows collapsed: %d != %d", loaded.Strings.Len(), len(snap.Strings))
	}
	last, _ := loaded.Strings.Lookup(source.StringID(len(snap.Strings) - 1))
	if last != decomposed {
		t.Fatalf("colliding row lost its written bytes: %q", last)
	}
}

func TestUnpackRejectsDuplicateStrings(t *testing.T) {
	_, m := buildPetModule(t)
	snap, err := irpack.Pack(m)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	snap.Strings = append(snap.Strings, snap.Strings[len(snap.Strings)-1])

	if _, err := irpack.Unpack(snap); err == nil || !strings.Contains(err.Error(), "duplicates") {
		t.Fatalf("want duplicate rows error, got %v", err)
	}
}

func TestUnpackRejectsForwardExpressionReference(t *testing.T) {
	_, m := buildPetModule(t)
	snap, err := irpack.Pack(m)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	corrupted := false
	for i := range snap.Exprs {
		if len(snap.Exprs[i].Args) > 0 {
			snap.Exprs[i].Args[0] = uint32(len(snap.Exprs) + 1)
			corrupted = true
			break
		}
	}
	if !corrupted {
		t.Fatal("fixture has no call rows to corrupt")
	}

	if _, err := irpack.Unpack(snap); err == nil || !strings.Contains(err.Error(), "ahead of itself") {
		t.Fatalf("want forward reference error, got %v", err)
	}
}

func TestPackRejectsCyclicExpressions(t *testing.T) {
	b := ir.NewBuilder("loops")
	m := b.Module()
	bt := m.Types.Builtins()

	echo := b.NewFunc(ir.NoClassID, "echo", ir.FuncPublic, ir.OriginSource, bt.Int, sp(1, 20))
	b.AddParam(echo, "n", bt.Int, sp(1, 10))
	call := b.NewCall(echo, bt.Int, sp(2, 10), ir.CallSpec{
		Values: []*ir.Expr{ir.NewIntConst(1, bt.Int, sp(2, 5))},
	})
	data, _ := call.AsCall()
	data.Args[0] = call
	b.SetBody(echo, &ir.Block{Span: sp(2, 10), Exprs: []*ir.Expr{call}})

	if _, err := irpack.Pack(m); err == nil || !strings.Contains(err.Error(), "cyclic") {
		t.Fatalf("want cyclic graph error, got %v", err)
	}
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	_, m := buildPetModule(t)
	path := filepath.Join(t.TempDir(), "out", "nested", "pets.swm")
	if err := irpack.Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
}

func writeSnapshot(t *testing.T, path string, snap *irpack.Snapshot) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := msgpack.NewEncoder(f).Encode(snap); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
