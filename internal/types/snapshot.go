package types

import (
	"fmt"

	"swell/internal/source"
)

// TypeRows returns a copy of the raw type table in TypeID order, the
// reserved invalid slot included. Together with the side-table rows this
// is everything a snapshot needs to rebuild the interner with identical
// handles.
func (in *Interner) TypeRows() []Type {
	return append([]Type(nil), in.types...)
}

// ClassRows returns a copy of the class side table in payload order.
func (in *Interner) ClassRows() []ClassInfo {
	return append([]ClassInfo(nil), in.classes...)
}

// TypeParamRows returns a copy of the type-parameter side table.
func (in *Interner) TypeParamRows() []TypeParamInfo {
	return append([]TypeParamInfo(nil), in.params...)
}

// FnRows returns a copy of the fn side table.
func (in *Interner) FnRows() []FnInfo {
	return append([]FnInfo(nil), in.fns...)
}

// RestoreInterner rebuilds an interner from snapshot rows. Row positions
// are the TypeID and payload spaces, so references serialized against
// the rows stay valid. Rows with out-of-range element or payload
// references are rejected.
func RestoreInterner(strings *source.Interner, typeRows []Type, classRows []ClassInfo, paramRows []TypeParamInfo, fnRows []FnInfo) (*Interner, error) {
	if strings == nil {
		return nil, fmt.Errorf("types: restore needs a string table")
	}
	if len(typeRows) == 0 || typeRows[0].Kind != KindInvalid {
		return nil, fmt.Errorf("types: type table lacks the reserved invalid slot")
	}
	if len(classRows) == 0 || len(paramRows) == 0 || len(fnRows) == 0 {
		return nil, fmt.Errorf("types: side table lacks the reserved invalid slot")
	}
	in := &Interner{
		Strings: strings,
		types:   append([]Type(nil), typeRows...),
		index:   make(map[typeKey]TypeID, len(typeRows)),
		classes: append([]ClassInfo(nil), classRows...),
		params:  append([]TypeParamInfo(nil), paramRows...),
		fns:     append([]FnInfo(nil), fnRows...),
	}
	for i := 1; i < len(in.types); i++ {
		t := in.types[i]
		if err := in.checkRow(i, t); err != nil {
			return nil, err
		}
		in.index[typeKey(t)] = TypeID(uint32(i))
	}
	for i := 1; i < len(in.fns); i++ {
		for _, p := range in.fns[i].Params {
			if int(p) >= len(in.types) {
				return nil, fmt.Errorf("types: fn row %d references type %d out of range", i, p)
			}
		}
	}
	in.builtins = Builtins{
		Invalid: NoTypeID,
		Unit:    in.Intern(Type{Kind: KindUnit}),
		Nothing: in.Intern(Type{Kind: KindNothing}),
		Bool:    in.Intern(Type{Kind: KindBool}),
		Int:     in.Intern(Type{Kind: KindInt}),
		Float:   in.Intern(Type{Kind: KindFloat}),
		String:  in.Intern(Type{Kind: KindString}),
	}
	return in, nil
}

func (in *Interner) checkRow(i int, t Type) error {
	switch t.Kind {
	case KindArray:
		if int(t.Elem) >= len(in.types) {
			return fmt.Errorf("types: row %d references element type %d out of range", i, t.Elem)
		}
	case KindClass:
		if t.Payload == 0 || int(t.Payload) >= len(in.classes) {
			return fmt.Errorf("types: row %d references class info %d out of range", i, t.Payload)
		}
	case KindTypeParam:
		if t.Payload == 0 || int(t.Payload) >= len(in.params) {
			return fmt.Errorf("types: row %d references type param info %d out of range", i, t.Payload)
		}
	case KindFn:
		if t.Payload == 0 || int(t.Payload) >= len(in.fns) {
			return fmt.Errorf("types: row %d references fn info %d out of range", i, t.Payload)
		}
	}
	return nil
}
