package ir

import (
	"fmt"

	"fortio.org/safecast"

	"swell/internal/source"
	"swell/internal/types"
)

// Builder is the construction API for modules. The front end and tests
// feed declarations through it; misuse (receivers after value params,
// surplus arguments for a non-vararg target) panics, structural rule
// violations that a well-meaning producer can still emit are left for
// Validate to report.
type Builder struct {
	m *Module
}

func NewBuilder(moduleName string) *Builder {
	return &Builder{m: NewModule(moduleName)}
}

// Module returns the module under construction.
func (b *Builder) Module() *Module {
	return b.m
}

// AddFile registers a front-end source path for span resolution.
func (b *Builder) AddFile(path string) source.FileID {
	return b.m.Files.Add(path)
}

// NewClass allocates a class declaration and interns its nominal type.
func (b *Builder) NewClass(name string, kind ClassKind, flags ClassFlags, span source.Span) ClassID {
	nameID := b.m.Strings.Intern(name)
	id := ClassID(b.m.Classes.Allocate(Class{
		Name:  nameID,
		Span:  span,
		Kind:  kind,
		Flags: flags,
	}))
	cls := b.m.Class(id)
	cls.Type = b.m.Types.RegisterClass(nameID, span, uint32(id), nil)
	return id
}

// AddSupertype appends a supertype reference to the class.
func (b *Builder) AddSupertype(class ClassID, super types.TypeID) {
	cls := b.mustClass(class)
	cls.Supertypes = append(cls.Supertypes, super)
}

// NewClassTypeParam introduces a generic parameter on a class.
func (b *Builder) NewClassTypeParam(owner ClassID, name string, span source.Span) TypeParamID {
	cls := b.mustClass(owner)
	id := b.newTypeParam(ClassKey(owner), name, len(cls.TypeParams), span)
	cls.TypeParams = append(cls.TypeParams, id)
	return id
}

// NewFuncTypeParam introduces a generic parameter on a function.
func (b *Builder) NewFuncTypeParam(owner FuncID, name string, span source.Span) TypeParamID {
	fn := b.mustFunc(owner)
	id := b.newTypeParam(FuncKey(owner), name, len(fn.TypeParams), span)
	fn.TypeParams = append(fn.TypeParams, id)
	return id
}

func (b *Builder) newTypeParam(owner DeclKey, name string, index int, span source.Span) TypeParamID {
	idx, err := safecast.Conv[uint32](index)
	if err != nil {
		panic(fmt.Errorf("type param index overflow: %w", err))
	}
	nameID := b.m.Strings.Intern(name)
	id := TypeParamID(b.m.TypeParams.Allocate(TypeParam{
		Name:  nameID,
		Span:  span,
		Owner: owner,
		Index: idx,
	}))
	tp := b.m.TypeParam(id)
	tp.Type = b.m.Types.RegisterTypeParam(nameID, uint32(id), idx)
	return id
}

// NewFunc allocates a function declaration. Pass NoClassID for top-level
// functions; member functions are appended to the owner's member list.
func (b *Builder) NewFunc(owner ClassID, name string, flags FuncFlags, origin Origin, result types.TypeID, span source.Span) FuncID {
	id := FuncID(b.m.Funcs.Allocate(Func{
		Name:   b.m.Strings.Intern(name),
		Span:   span,
		Flags:  flags,
		Origin: origin,
		Owner:  owner,
		Result: result,
	}))
	if owner.IsValid() {
		cls := b.mustClass(owner)
		cls.Funcs = append(cls.Funcs, id)
	}
	return id
}

// ParamOptions carries the optional parts of a parameter declaration.
type ParamOptions struct {
	IsVararg   bool
	VarargElem types.TypeID
	HasDefault bool
	Default    *Expr
}

// AddDispatchReceiver adds the instance receiver. It must be the first
// parameter of the function.
func (b *Builder) AddDispatchReceiver(fn FuncID, typ types.TypeID, span source.Span) ParamID {
	f := b.mustFunc(fn)
	if len(f.Params) != 0 {
		panic(fmt.Errorf("ir: dispatch receiver of %s must be the first parameter", b.m.FuncName(fn)))
	}
	return b.addParam(fn, "this", ParamDispatch, typ, span, ParamOptions{})
}

// AddExtensionReceiver adds the extension receiver. It must precede every
// value parameter.
func (b *Builder) AddExtensionReceiver(fn FuncID, typ types.TypeID, span source.Span) ParamID {
	f := b.mustFunc(fn)
	for _, pid := range f.Params {
		if p := b.m.Param(pid); p != nil && !p.IsReceiver() {
			panic(fmt.Errorf("ir: extension receiver of %s must precede value parameters", b.m.FuncName(fn)))
		}
	}
	return b.addParam(fn, "receiver", ParamExtension, typ, span, ParamOptions{})
}

// AddParam adds a value parameter.
func (b *Builder) AddParam(fn FuncID, name string, typ types.TypeID, span source.Span) ParamID {
	return b.addParam(fn, name, ParamValue, typ, span, ParamOptions{})
}

// AddParamWith adds a value parameter with vararg or default options.
func (b *Builder) AddParamWith(fn FuncID, name string, typ types.TypeID, span source.Span, opts ParamOptions) ParamID {
	return b.addParam(fn, name, ParamValue, typ, span, opts)
}

func (b *Builder) addParam(fn FuncID, name string, kind ParamKind, typ types.TypeID, span source.Span, opts ParamOptions) ParamID {
	f := b.mustFunc(fn)
	idx, err := safecast.Conv[uint32](len(f.Params))
	if err != nil {
		panic(fmt.Errorf("param index overflow: %w", err))
	}
	id := ParamID(b.m.Params.Allocate(Param{
		Name:       b.m.Strings.Intern(name),
		Span:       span,
		Kind:       kind,
		Owner:      fn,
		Index:      idx,
		Type:       typ,
		IsVararg:   opts.IsVararg,
		VarargElem: opts.VarargElem,
		HasDefault: opts.HasDefault,
		Default:    opts.Default,
	}))
	f.Params = append(f.Params, id)
	return id
}

// SetOverridden records the immediate supertype members fn overrides.
func (b *Builder) SetOverridden(fn FuncID, overridden []FuncID) {
	f := b.mustFunc(fn)
	f.Overridden = overridden
}

// SetBody attaches a body to a function.
func (b *Builder) SetBody(fn FuncID, body *Block) {
	f := b.mustFunc(fn)
	f.Body = body
}

// NewField allocates a member field declaration.
func (b *Builder) NewField(owner ClassID, name string, typ types.TypeID, flags FieldFlags, origin Origin, span source.Span) FieldID {
	cls := b.mustClass(owner)
	id := FieldID(b.m.Fields.Allocate(Field{
		Name:   b.m.Strings.Intern(name),
		Span:   span,
		Flags:  flags,
		Origin: origin,
		Owner:  owner,
		Type:   typ,
	}))
	cls.Fields = append(cls.Fields, id)
	return id
}

// SetFieldOverridden records the immediate supertype fields the field
// overrides.
func (b *Builder) SetFieldOverridden(field FieldID, overridden []FieldID) {
	f := b.m.Field(field)
	if f == nil {
		panic(fmt.Errorf("ir: invalid field %d", field))
	}
	f.Overridden = overridden
}

// NewFakeOverride materializes the inherited stub subclasses carry for a
// visible supertype member. The signature is cloned from the first
// overridden function; the stub is abstract only when every overridden
// member is abstract, and it never has a body.
func (b *Builder) NewFakeOverride(class ClassID, overridden []FuncID) FuncID {
	if len(overridden) == 0 {
		panic(fmt.Errorf("ir: fake override in %s needs at least one overridden member", b.m.ClassName(class)))
	}
	cls := b.mustClass(class)
	proto := b.mustFunc(overridden[0])

	flags := proto.Flags&(FuncPublic|FuncOpen|FuncStatic) | FuncOverride
	allAbstract := true
	for _, over := range overridden {
		if !b.mustFunc(over).IsAbstract() {
			allAbstract = false
			break
		}
	}
	if allAbstract {
		flags |= FuncAbstract
	}

	id := FuncID(b.m.Funcs.Allocate(Func{
		Name:   proto.Name,
		Span:   cls.Span,
		Flags:  flags,
		Origin: OriginFakeOverride,
		Owner:  class,
		// The stub mirrors the prototype's generic arity so call sites
		// keep their type arguments across devirtualization.
		TypeParams: append([]TypeParamID(nil), proto.TypeParams...),
		Result:     proto.Result,
		Overridden: overridden,
	}))
	cls.Funcs = append(cls.Funcs, id)

	for _, pid := range proto.Params {
		p := b.m.Param(pid)
		b.addParam(id, b.m.NameOf(p.Name), p.Kind, p.Type, p.Span, ParamOptions{
			IsVararg:   p.IsVararg,
			VarargElem: p.VarargElem,
			HasDefault: p.HasDefault,
			Default:    p.Default,
		})
	}
	return id
}

// NewFakeFieldOverride is the field counterpart of NewFakeOverride.
func (b *Builder) NewFakeFieldOverride(class ClassID, overridden []FieldID) FieldID {
	if len(overridden) == 0 {
		panic(fmt.Errorf("ir: fake field override in %s needs at least one overridden member", b.m.ClassName(class)))
	}
	cls := b.mustClass(class)
	proto := b.m.Field(overridden[0])
	if proto == nil {
		panic(fmt.Errorf("ir: invalid field %d", overridden[0]))
	}

	id := FieldID(b.m.Fields.Allocate(Field{
		Name:       proto.Name,
		Span:       cls.Span,
		Flags:      proto.Flags,
		Origin:     OriginFakeOverride,
		Owner:      class,
		Type:       proto.Type,
		Overridden: overridden,
	}))
	cls.Fields = append(cls.Fields, id)
	return id
}

// CallSpec carries the pieces of a call under construction. Values are
// positional over the target's value parameters; surplus trailing values
// are packed into the vararg holder when the target's last parameter is
// a vararg and panic otherwise.
type CallSpec struct {
	TypeArgs  []types.TypeID
	Dispatch  *Expr
	Extension *Expr
	Values    []*Expr
}

// NewCall builds a call expression targeting fn. The expression type is
// the call's static result type.
func (b *Builder) NewCall(fn FuncID, result types.TypeID, span source.Span, spec CallSpec) *Expr {
	f := b.mustFunc(fn)
	if spec.Dispatch != nil && !b.m.ReceiverParam(fn, ParamDispatch).IsValid() {
		panic(fmt.Errorf("ir: %s takes no dispatch receiver", b.m.NameOf(f.Name)))
	}
	if spec.Extension != nil && !b.m.ReceiverParam(fn, ParamExtension).IsValid() {
		panic(fmt.Errorf("ir: %s takes no extension receiver", b.m.NameOf(f.Name)))
	}
	if len(spec.TypeArgs) != len(f.TypeParams) {
		panic(fmt.Errorf("ir: %d type arguments for %d type parameters of %s",
			len(spec.TypeArgs), len(f.TypeParams), b.m.NameOf(f.Name)))
	}
	args := PackVarargs(b.m, fn, spec.Values, span)
	data := &CallData{
		Target:    fn,
		TypeArgs:  spec.TypeArgs,
		Dispatch:  spec.Dispatch,
		Extension: spec.Extension,
		Args:      args,
	}
	return NewCallExpr(data, result, span)
}

func (b *Builder) mustClass(id ClassID) *Class {
	cls := b.m.Class(id)
	if cls == nil {
		panic(fmt.Errorf("ir: invalid class %d", id))
	}
	return cls
}

func (b *Builder) mustFunc(id FuncID) *Func {
	f := b.m.Func(id)
	if f == nil {
		panic(fmt.Errorf("ir: invalid function %d", id))
	}
	return f
}
