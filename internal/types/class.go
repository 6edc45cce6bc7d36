package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"swell/internal/source"
)

// ClassInfo stores metadata for a nominal class type instance.
// Def is the opaque handle of the class declaration that introduced the
// type; the IR layer owns the declaration arenas, so the interner only
// carries the raw value.
type ClassInfo struct {
	Name source.StringID
	Decl source.Span
	Def  uint32
	Args []TypeID
}

// RegisterClass returns the TypeID for the class instance def<args>.
// Instances are deduplicated on Def plus the exact argument list, so the
// generic class and each of its instantiations get distinct stable IDs.
func (in *Interner) RegisterClass(name source.StringID, decl source.Span, def uint32, args []TypeID) TypeID {
	if id, ok := in.FindClassInstance(def, args); ok {
		return id
	}
	slot := in.appendClassInfo(ClassInfo{
		Name: name,
		Decl: decl,
		Def:  def,
		Args: cloneTypeArgs(args),
	})
	return in.internRaw(Type{Kind: KindClass, Payload: slot})
}

// FindClassInstance returns the TypeID of an already registered instance
// of def with exactly the given type arguments.
func (in *Interner) FindClassInstance(def uint32, args []TypeID) (TypeID, bool) {
	if in == nil {
		return NoTypeID, false
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind != KindClass {
			continue
		}
		info := in.classInfo(id)
		if info == nil || info.Def != def {
			continue
		}
		if slices.Equal(info.Args, args) {
			return id, true
		}
	}
	return NoTypeID, false
}

// ClassInfo returns metadata for the provided class TypeID.
func (in *Interner) ClassInfo(typeID TypeID) (*ClassInfo, bool) {
	info := in.classInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// ClassDef returns the declaration handle behind a class TypeID.
func (in *Interner) ClassDef(typeID TypeID) (uint32, bool) {
	info := in.classInfo(typeID)
	if info == nil {
		return 0, false
	}
	return info.Def, true
}

// ClassArgs returns a copy of the type arguments of a class instance.
func (in *Interner) ClassArgs(typeID TypeID) []TypeID {
	info := in.classInfo(typeID)
	if info == nil || len(info.Args) == 0 {
		return nil
	}
	return cloneTypeArgs(info.Args)
}

func (in *Interner) classInfo(typeID TypeID) *ClassInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindClass {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.classes) {
		return nil
	}
	return &in.classes[tt.Payload]
}

func (in *Interner) appendClassInfo(info ClassInfo) uint32 {
	in.classes = append(in.classes, info)
	slot, err := safecast.Conv[uint32](len(in.classes) - 1)
	if err != nil {
		panic(fmt.Errorf("class info overflow: %w", err))
	}
	return slot
}

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	return slices.Clone(args)
}
