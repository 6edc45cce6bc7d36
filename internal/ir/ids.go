package ir

import "fmt"

type (
	// declaration handles, 1-based arena indexes
	ClassID     uint32
	FuncID      uint32
	FieldID     uint32
	ParamID     uint32
	TypeParamID uint32
)

const (
	NoClassID     ClassID     = 0
	NoFuncID      FuncID      = 0
	NoFieldID     FieldID     = 0
	NoParamID     ParamID     = 0
	NoTypeParamID TypeParamID = 0
)

func (id ClassID) IsValid() bool     { return id != NoClassID }
func (id FuncID) IsValid() bool      { return id != NoFuncID }
func (id FieldID) IsValid() bool     { return id != NoFieldID }
func (id ParamID) IsValid() bool     { return id != NoParamID }
func (id TypeParamID) IsValid() bool { return id != NoTypeParamID }

// DeclKind discriminates the arena a DeclKey points into.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclClass
	DeclFunc
	DeclField
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclFunc:
		return "fn"
	case DeclField:
		return "field"
	default:
		return "invalid"
	}
}

// DeclKey is a comparable reference to any declaration. Type parameters
// use it to name their owner without caring which arena the owner lives in.
type DeclKey struct {
	Kind  DeclKind
	Index uint32
}

func ClassKey(id ClassID) DeclKey { return DeclKey{Kind: DeclClass, Index: uint32(id)} }
func FuncKey(id FuncID) DeclKey   { return DeclKey{Kind: DeclFunc, Index: uint32(id)} }
func FieldKey(id FieldID) DeclKey { return DeclKey{Kind: DeclField, Index: uint32(id)} }

func (k DeclKey) IsValid() bool {
	return k.Kind != DeclInvalid && k.Index != 0
}

func (k DeclKey) Class() (ClassID, bool) {
	if k.Kind != DeclClass {
		return NoClassID, false
	}
	return ClassID(k.Index), true
}

func (k DeclKey) Func() (FuncID, bool) {
	if k.Kind != DeclFunc {
		return NoFuncID, false
	}
	return FuncID(k.Index), true
}

func (k DeclKey) String() string {
	return fmt.Sprintf("%s#%d", k.Kind, k.Index)
}
