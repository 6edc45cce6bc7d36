package irpack

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"swell/internal/ir"
	"swell/internal/source"
	"swell/internal/types"
)

// ErrSchemaMismatch reports a snapshot written under a different schema
// version than this build reads.
var ErrSchemaMismatch = errors.New("irpack: snapshot schema mismatch")

// Unpack rebuilds a module from a snapshot. Every handle in the rebuilt
// module matches the one it was packed under, so ids taken from one
// process stay valid after a round trip through disk.
//
// Unpack only rejects snapshots whose tables cannot be indexed safely.
// Semantic breakage (dangling declaration handles, bad override graphs)
// is left to ir.Validate, which reports it with proper diagnostics.
func Unpack(snap *Snapshot) (*ir.Module, error) {
	if snap == nil {
		return nil, fmt.Errorf("irpack: nil snapshot")
	}
	if snap.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: snapshot has schema %d, this build reads %d",
			ErrSchemaMismatch, snap.Schema, SchemaVersion)
	}
	if len(snap.Strings) == 0 || snap.Strings[0] != "" {
		return nil, fmt.Errorf("irpack: string table lacks the reserved empty slot")
	}
	normalized, err := normalizeStrings(snap.Strings)
	if err != nil {
		return nil, err
	}
	strings := source.RestoreInterner(normalized)

	typesIn, err := types.RestoreInterner(strings, snap.TypeRows, snap.ClassRows, snap.TypeParamRows, snap.FnRows)
	if err != nil {
		return nil, fmt.Errorf("irpack: %w", err)
	}

	exprs, err := unpackExprs(snap.Exprs)
	if err != nil {
		return nil, err
	}
	exprAt := func(ref uint32, what string, row int) (*ir.Expr, error) {
		if ref == 0 {
			return nil, nil
		}
		if int(ref) >= len(exprs) {
			return nil, fmt.Errorf("irpack: %s row %d references expression row %d of %d",
				what, row+1, ref, len(exprs)-1)
		}
		return exprs[ref], nil
	}

	classes := make([]ir.Class, len(snap.Classes))
	for i, row := range snap.Classes {
		classes[i] = ir.Class{
			Name:       source.StringID(row.Name),
			Span:       row.Span,
			Kind:       ir.ClassKind(row.Kind),
			Flags:      ir.ClassFlags(row.Flags),
			Type:       types.TypeID(row.Type),
			Supertypes: unpackIDs[types.TypeID](row.Supertypes),
			TypeParams: unpackIDs[ir.TypeParamID](row.TypeParams),
			Fields:     unpackIDs[ir.FieldID](row.Fields),
			Funcs:      unpackIDs[ir.FuncID](row.Funcs),
		}
	}

	funcs := make([]ir.Func, len(snap.Funcs))
	for i, row := range snap.Funcs {
		fn := ir.Func{
			Name:       source.StringID(row.Name),
			Span:       row.Span,
			Flags:      ir.FuncFlags(row.Flags),
			Origin:     ir.Origin(row.Origin),
			Owner:      ir.ClassID(row.Owner),
			TypeParams: unpackIDs[ir.TypeParamID](row.TypeParams),
			Params:     unpackIDs[ir.ParamID](row.Params),
			Result:     types.TypeID(row.Result),
			Overridden: unpackIDs[ir.FuncID](row.Overridden),
		}
		if row.HasBody {
			body := &ir.Block{Span: row.BodySpan}
			for _, ref := range row.BodyRoots {
				root, err := exprAt(ref, "function", i)
				if err != nil {
					return nil, err
				}
				body.Exprs = append(body.Exprs, root)
			}
			fn.Body = body
		}
		funcs[i] = fn
	}

	fields := make([]ir.Field, len(snap.Fields))
	for i, row := range snap.Fields {
		init, err := exprAt(row.Init, "field", i)
		if err != nil {
			return nil, err
		}
		fields[i] = ir.Field{
			Name:       source.StringID(row.Name),
			Span:       row.Span,
			Flags:      ir.FieldFlags(row.Flags),
			Origin:     ir.Origin(row.Origin),
			Owner:      ir.ClassID(row.Owner),
			Type:       types.TypeID(row.Type),
			Overridden: unpackIDs[ir.FieldID](row.Overridden),
			Init:       init,
		}
	}

	params := make([]ir.Param, len(snap.Params))
	for i, row := range snap.Params {
		def, err := exprAt(row.Default, "param", i)
		if err != nil {
			return nil, err
		}
		params[i] = ir.Param{
			Name:       source.StringID(row.Name),
			Span:       row.Span,
			Kind:       ir.ParamKind(row.Kind),
			Owner:      ir.FuncID(row.Owner),
			Index:      row.Index,
			Type:       types.TypeID(row.Type),
			IsVararg:   row.IsVararg,
			VarargElem: types.TypeID(row.VarargElem),
			HasDefault: row.HasDefault,
			Default:    def,
		}
	}

	typeParams := make([]ir.TypeParam, len(snap.TypeParams))
	for i, row := range snap.TypeParams {
		typeParams[i] = ir.TypeParam{
			Name:  source.StringID(row.Name),
			Span:  row.Span,
			Owner: ir.DeclKey{Kind: ir.DeclKind(row.OwnerKind), Index: row.OwnerIndex},
			Index: row.Index,
			Type:  types.TypeID(row.Type),
		}
	}

	return &ir.Module{
		Name:       source.StringID(snap.Name),
		Strings:    strings,
		Types:      typesIn,
		Files:      source.RestoreFileTable(snap.Files),
		Classes:    ir.RestoreArena(classes),
		Funcs:      ir.RestoreArena(funcs),
		Fields:     ir.RestoreArena(fields),
		Params:     ir.RestoreArena(params),
		TypeParams: ir.RestoreArena(typeParams),
	}, nil
}

// unpackExprs decodes the expression table. Rows are child-first, so a
// reference is only valid when it points at an earlier row; anything
// else means the snapshot is corrupt.
func unpackExprs(rows []PackedExpr) ([]*ir.Expr, error) {
	out := make([]*ir.Expr, len(rows)+1) // out[0] stays nil, 0 means absent
	child := func(ref uint32, row int) (*ir.Expr, error) {
		if ref == 0 {
			return nil, nil
		}
		if int(ref) > row {
			return nil, fmt.Errorf("irpack: expression row %d references row %d ahead of itself", row+1, ref)
		}
		return out[ref], nil
	}
	for i, row := range rows {
		e := &ir.Expr{
			Kind: ir.ExprKind(row.Kind),
			Type: types.TypeID(row.Type),
			Span: row.Span,
		}
		switch e.Kind {
		case ir.ExprConst:
			e.Data = ir.ConstData{
				Kind:        ir.ConstKind(row.ConstKind),
				IntValue:    row.IntValue,
				FloatValue:  row.FloatValue,
				BoolValue:   row.BoolValue,
				StringValue: source.StringID(row.StringValue),
			}
		case ir.ExprGetValue:
			e.Data = ir.GetValueData{Param: ir.ParamID(row.Param)}
		case ir.ExprGetField:
			recv, err := child(row.Receiver, i)
			if err != nil {
				return nil, err
			}
			e.Data = ir.GetFieldData{Field: ir.FieldID(row.Field), Receiver: recv}
		case ir.ExprArrayLit:
			data := ir.ArrayLitData{Elem: types.TypeID(row.Elem)}
			for _, ref := range row.Elems {
				el, err := child(ref, i)
				if err != nil {
					return nil, err
				}
				data.Elems = append(data.Elems, el)
			}
			e.Data = data
		case ir.ExprCall:
			data := &ir.CallData{
				Target:   ir.FuncID(row.Target),
				TypeArgs: unpackIDs[types.TypeID](row.TypeArgs),
			}
			disp, err := child(row.Dispatch, i)
			if err != nil {
				return nil, err
			}
			ext, err := child(row.Extension, i)
			if err != nil {
				return nil, err
			}
			data.Dispatch = disp
			data.Extension = ext
			for _, ref := range row.Args {
				arg, err := child(ref, i)
				if err != nil {
					return nil, err
				}
				data.Args = append(data.Args, arg)
			}
			e.Data = data
		default:
			return nil, fmt.Errorf("irpack: expression row %d has unknown kind %d", i+1, row.Kind)
		}
		out[i+1] = e
	}
	return out, nil
}

// normalizeStrings brings snapshot strings to NFC so identifiers compare
// equal regardless of which front end wrote them. When two distinct rows
// would normalize to the same text, both keep their written bytes:
// collapsing rows would shift every later StringID. Identical raw rows
// mean the writer's interner was broken, so they are rejected.
func normalizeStrings(raw []string) ([]string, error) {
	counts := make(map[string]int, len(raw))
	for _, s := range raw {
		counts[norm.NFC.String(s)]++
	}
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, s := range raw {
		n := norm.NFC.String(s)
		if counts[n] > 1 {
			n = s
		}
		if prev, dup := seen[n]; dup {
			return nil, fmt.Errorf("irpack: string rows %d and %d are duplicates", prev, i)
		}
		seen[n] = i
		out[i] = n
	}
	return out, nil
}

func unpackIDs[T ~uint32](raw []uint32) []T {
	if len(raw) == 0 {
		return nil
	}
	out := make([]T, len(raw))
	for i, v := range raw {
		out[i] = T(v)
	}
	return out
}
