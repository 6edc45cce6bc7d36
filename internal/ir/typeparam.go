package ir

import (
	"swell/internal/source"
	"swell/internal/types"
)

// TypeParam is a generic type parameter declaration. Owner names the
// class or function that introduced it; Index is the position inside
// that owner's parameter list.
type TypeParam struct {
	Name  source.StringID
	Span  source.Span
	Owner DeclKey
	Index uint32

	// Type is the interned KindTypeParam descriptor for this parameter.
	Type types.TypeID
}
