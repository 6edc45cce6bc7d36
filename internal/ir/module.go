package ir

import (
	"swell/internal/source"
	"swell/internal/types"
)

// Module is one front-end compilation unit after lowering to this IR.
// Declarations live in typed arenas and refer to each other through
// 1-based handles, so a module serializes to flat tables without pointer
// chasing.
type Module struct {
	Name source.StringID

	Strings *source.Interner
	Types   *types.Interner
	Files   *source.FileTable

	Classes    *Arena[Class]
	Funcs      *Arena[Func]
	Fields     *Arena[Field]
	Params     *Arena[Param]
	TypeParams *Arena[TypeParam]
}

// NewModule creates an empty module with fresh interners.
func NewModule(name string) *Module {
	strings := source.NewInterner()
	m := &Module{
		Strings:    strings,
		Types:      types.NewInterner(strings),
		Files:      source.NewFileTable(),
		Classes:    NewArena[Class](16),
		Funcs:      NewArena[Func](64),
		Fields:     NewArena[Field](32),
		Params:     NewArena[Param](128),
		TypeParams: NewArena[TypeParam](16),
	}
	m.Name = strings.Intern(name)
	return m
}

// Class returns the class for the handle, nil for NoClassID or a stale id.
func (m *Module) Class(id ClassID) *Class {
	return m.Classes.Get(uint32(id))
}

func (m *Module) Func(id FuncID) *Func {
	return m.Funcs.Get(uint32(id))
}

func (m *Module) Field(id FieldID) *Field {
	return m.Fields.Get(uint32(id))
}

func (m *Module) Param(id ParamID) *Param {
	return m.Params.Get(uint32(id))
}

func (m *Module) TypeParam(id TypeParamID) *TypeParam {
	return m.TypeParams.Get(uint32(id))
}

// NameOf resolves an interned string, "?" when unknown.
func (m *Module) NameOf(id source.StringID) string {
	if m == nil || m.Strings == nil {
		return "?"
	}
	if s, ok := m.Strings.Lookup(id); ok && s != "" {
		return s
	}
	return "?"
}

// ClassName is a convenience for diagnostics and dumps.
func (m *Module) ClassName(id ClassID) string {
	c := m.Class(id)
	if c == nil {
		return "?"
	}
	return m.NameOf(c.Name)
}

// FuncName is a convenience for diagnostics and dumps.
func (m *Module) FuncName(id FuncID) string {
	f := m.Func(id)
	if f == nil {
		return "?"
	}
	return m.NameOf(f.Name)
}

// FieldName is a convenience for diagnostics and dumps.
func (m *Module) FieldName(id FieldID) string {
	f := m.Field(id)
	if f == nil {
		return "?"
	}
	return m.NameOf(f.Name)
}

// FindClass returns the first class with the given name.
func (m *Module) FindClass(name string) ClassID {
	id, ok := m.Strings.LookupID(name)
	if !ok {
		return NoClassID
	}
	for i := uint32(1); i <= m.Classes.Len(); i++ {
		if m.Classes.Get(i).Name == id {
			return ClassID(i)
		}
	}
	return NoClassID
}

// FindFunc returns the first function with the given name, searching the
// owner's members when owner is valid and top-level functions otherwise.
func (m *Module) FindFunc(owner ClassID, name string) FuncID {
	id, ok := m.Strings.LookupID(name)
	if !ok {
		return NoFuncID
	}
	if owner.IsValid() {
		c := m.Class(owner)
		if c == nil {
			return NoFuncID
		}
		for _, fn := range c.Funcs {
			if f := m.Func(fn); f != nil && f.Name == id {
				return fn
			}
		}
		return NoFuncID
	}
	for i := uint32(1); i <= m.Funcs.Len(); i++ {
		f := m.Funcs.Get(i)
		if f.Name == id && !f.Owner.IsValid() {
			return FuncID(i)
		}
	}
	return NoFuncID
}

// ClassOfType resolves a class type reference back to its declaration.
// Returns NoClassID when the type is not a class type or the handle is
// stale.
func (m *Module) ClassOfType(t types.TypeID) ClassID {
	if m == nil || m.Types == nil {
		return NoClassID
	}
	def, ok := m.Types.ClassDef(t)
	if !ok {
		return NoClassID
	}
	id := ClassID(def)
	if m.Class(id) == nil {
		return NoClassID
	}
	return id
}

// ValueParams returns the value parameters of a function in order,
// receivers excluded.
func (m *Module) ValueParams(fn FuncID) []ParamID {
	f := m.Func(fn)
	if f == nil {
		return nil
	}
	out := make([]ParamID, 0, len(f.Params))
	for _, pid := range f.Params {
		if p := m.Param(pid); p != nil && p.Kind == ParamValue {
			out = append(out, pid)
		}
	}
	return out
}

// ReceiverParam returns the receiver of the given kind, NoParamID when
// the function has none.
func (m *Module) ReceiverParam(fn FuncID, kind ParamKind) ParamID {
	f := m.Func(fn)
	if f == nil || kind == ParamValue {
		return NoParamID
	}
	for _, pid := range f.Params {
		if p := m.Param(pid); p != nil && p.Kind == kind {
			return pid
		}
	}
	return NoParamID
}
