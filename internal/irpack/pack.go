// Package irpack serializes IR modules to compact msgpack snapshots and
// restores them with identical handles. The wire layout is flat tables
// in arena order: rows reference each other through 1-based indexes
// where 0 always means absent, so a snapshot round-trips without any
// pointer fixup beyond the expression table.
package irpack

import (
	"fmt"

	"swell/internal/ir"
	"swell/internal/source"
	"swell/internal/types"
)

// SchemaVersion is bumped whenever the snapshot layout changes shape.
// Readers reject snapshots written under a different version.
const SchemaVersion uint16 = 1

// Snapshot is the serialized form of one ir.Module.
type Snapshot struct {
	Schema uint16
	Name   uint32

	Strings []string
	Files   []string

	TypeRows      []types.Type
	ClassRows     []types.ClassInfo
	TypeParamRows []types.TypeParamInfo
	FnRows        []types.FnInfo

	Classes    []PackedClass
	Funcs      []PackedFunc
	Fields     []PackedField
	Params     []PackedParam
	TypeParams []PackedTypeParam

	// Exprs is the module-wide expression table in child-first order:
	// every row only references rows before it.
	Exprs []PackedExpr
}

// PackedClass mirrors ir.Class with handles widened to raw indexes.
type PackedClass struct {
	Name       uint32
	Span       source.Span
	Kind       uint8
	Flags      uint32
	Type       uint32
	Supertypes []uint32
	TypeParams []uint32
	Fields     []uint32
	Funcs      []uint32
}

// PackedFunc mirrors ir.Func. Body roots index the expression table.
type PackedFunc struct {
	Name       uint32
	Span       source.Span
	Flags      uint32
	Origin     uint8
	Owner      uint32
	TypeParams []uint32
	Params     []uint32
	Result     uint32
	Overridden []uint32
	HasBody    bool
	BodySpan   source.Span
	BodyRoots  []uint32
}

// PackedField mirrors ir.Field.
type PackedField struct {
	Name       uint32
	Span       source.Span
	Flags      uint32
	Origin     uint8
	Owner      uint32
	Type       uint32
	Overridden []uint32
	Init       uint32
}

// PackedParam mirrors ir.Param.
type PackedParam struct {
	Name       uint32
	Span       source.Span
	Kind       uint8
	Owner      uint32
	Index      uint32
	Type       uint32
	IsVararg   bool
	VarargElem uint32
	HasDefault bool
	Default    uint32
}

// PackedTypeParam mirrors ir.TypeParam.
type PackedTypeParam struct {
	Name       uint32
	Span       source.Span
	OwnerKind  uint8
	OwnerIndex uint32
	Index      uint32
	Type       uint32
}

// PackedExpr is one expression row. Kind selects which payload fields
// are meaningful; child references are row indexes and 0 means absent.
// In call argument lists a 0 entry is an omitted (defaulted) argument.
type PackedExpr struct {
	Kind uint8
	Type uint32
	Span source.Span

	ConstKind   uint8
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue uint32

	Param uint32

	Field    uint32
	Receiver uint32

	Target   uint32
	TypeArgs []uint32
	Dispatch uint32
	Args     []uint32

	Elem  uint32
	Elems []uint32

	Extension uint32
}

type packer struct {
	rows []PackedExpr
	refs map[*ir.Expr]uint32
	busy map[*ir.Expr]struct{}
}

// Pack flattens the module into a snapshot.
func Pack(m *ir.Module) (*Snapshot, error) {
	p := &packer{
		refs: make(map[*ir.Expr]uint32),
		busy: make(map[*ir.Expr]struct{}),
	}
	snap := &Snapshot{
		Schema:        SchemaVersion,
		Name:          uint32(m.Name),
		Strings:       m.Strings.Snapshot(),
		Files:         append([]string(nil), m.Files.Snapshot()...),
		TypeRows:      m.Types.TypeRows(),
		ClassRows:     m.Types.ClassRows(),
		TypeParamRows: m.Types.TypeParamRows(),
		FnRows:        m.Types.FnRows(),
	}

	for _, cls := range m.Classes.Slice() {
		snap.Classes = append(snap.Classes, PackedClass{
			Name:       uint32(cls.Name),
			Span:       cls.Span,
			Kind:       uint8(cls.Kind),
			Flags:      uint32(cls.Flags),
			Type:       uint32(cls.Type),
			Supertypes: packIDs(cls.Supertypes),
			TypeParams: packIDs(cls.TypeParams),
			Fields:     packIDs(cls.Fields),
			Funcs:      packIDs(cls.Funcs),
		})
	}
	for i, fn := range m.Funcs.Slice() {
		packed := PackedFunc{
			Name:       uint32(fn.Name),
			Span:       fn.Span,
			Flags:      uint32(fn.Flags),
			Origin:     uint8(fn.Origin),
			Owner:      uint32(fn.Owner),
			TypeParams: packIDs(fn.TypeParams),
			Params:     packIDs(fn.Params),
			Result:     uint32(fn.Result),
			Overridden: packIDs(fn.Overridden),
		}
		if fn.Body != nil {
			packed.HasBody = true
			packed.BodySpan = fn.Body.Span
			for _, root := range fn.Body.Exprs {
				ref, err := p.expr(root)
				if err != nil {
					return nil, fmt.Errorf("irpack: %s: %w", m.FuncName(ir.FuncID(i+1)), err)
				}
				packed.BodyRoots = append(packed.BodyRoots, ref)
			}
		}
		snap.Funcs = append(snap.Funcs, packed)
	}
	for _, fld := range m.Fields.Slice() {
		init, err := p.expr(fld.Init)
		if err != nil {
			return nil, fmt.Errorf("irpack: field %s: %w", m.NameOf(fld.Name), err)
		}
		snap.Fields = append(snap.Fields, PackedField{
			Name:       uint32(fld.Name),
			Span:       fld.Span,
			Flags:      uint32(fld.Flags),
			Origin:     uint8(fld.Origin),
			Owner:      uint32(fld.Owner),
			Type:       uint32(fld.Type),
			Overridden: packIDs(fld.Overridden),
			Init:       init,
		})
	}
	for _, prm := range m.Params.Slice() {
		def, err := p.expr(prm.Default)
		if err != nil {
			return nil, fmt.Errorf("irpack: param %s: %w", m.NameOf(prm.Name), err)
		}
		snap.Params = append(snap.Params, PackedParam{
			Name:       uint32(prm.Name),
			Span:       prm.Span,
			Kind:       uint8(prm.Kind),
			Owner:      uint32(prm.Owner),
			Index:      prm.Index,
			Type:       uint32(prm.Type),
			IsVararg:   prm.IsVararg,
			VarargElem: uint32(prm.VarargElem),
			HasDefault: prm.HasDefault,
			Default:    def,
		})
	}
	for _, tp := range m.TypeParams.Slice() {
		snap.TypeParams = append(snap.TypeParams, PackedTypeParam{
			Name:       uint32(tp.Name),
			Span:       tp.Span,
			OwnerKind:  uint8(tp.Owner.Kind),
			OwnerIndex: tp.Owner.Index,
			Index:      tp.Index,
			Type:       uint32(tp.Type),
		})
	}
	snap.Exprs = p.rows
	return snap, nil
}

// expr appends the expression and its children to the table, children
// first, and returns the 1-based row reference. Shared subtrees encode
// once.
func (p *packer) expr(e *ir.Expr) (uint32, error) {
	if e == nil {
		return 0, nil
	}
	if ref, ok := p.refs[e]; ok {
		return ref, nil
	}
	if _, cyc := p.busy[e]; cyc {
		return 0, fmt.Errorf("expression graph is cyclic")
	}
	p.busy[e] = struct{}{}
	defer delete(p.busy, e)

	row := PackedExpr{
		Kind: uint8(e.Kind),
		Type: uint32(e.Type),
		Span: e.Span,
	}
	switch d := e.Data.(type) {
	case ir.ConstData:
		row.ConstKind = uint8(d.Kind)
		row.IntValue = d.IntValue
		row.FloatValue = d.FloatValue
		row.BoolValue = d.BoolValue
		row.StringValue = uint32(d.StringValue)
	case ir.GetValueData:
		row.Param = uint32(d.Param)
	case ir.GetFieldData:
		recv, err := p.expr(d.Receiver)
		if err != nil {
			return 0, err
		}
		row.Field = uint32(d.Field)
		row.Receiver = recv
	case ir.ArrayLitData:
		row.Elem = uint32(d.Elem)
		for _, el := range d.Elems {
			ref, err := p.expr(el)
			if err != nil {
				return 0, err
			}
			row.Elems = append(row.Elems, ref)
		}
	case *ir.CallData:
		row.Target = uint32(d.Target)
		row.TypeArgs = packIDs(d.TypeArgs)
		disp, err := p.expr(d.Dispatch)
		if err != nil {
			return 0, err
		}
		ext, err := p.expr(d.Extension)
		if err != nil {
			return 0, err
		}
		row.Dispatch = disp
		row.Extension = ext
		for _, arg := range d.Args {
			ref, err := p.expr(arg)
			if err != nil {
				return 0, err
			}
			row.Args = append(row.Args, ref)
		}
	default:
		return 0, fmt.Errorf("expression kind %s has no packed form", e.Kind)
	}

	p.rows = append(p.rows, row)
	ref := uint32(len(p.rows))
	p.refs[e] = ref
	return ref, nil
}

func packIDs[T ~uint32](ids []T) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}
