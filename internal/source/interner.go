package source

import (
	"slices"
)

type StringID uint32

const NoStringID StringID = 0

type Interner struct {
	byID  []string            // index -> string (byID[0] = "" for NoStringID)
	index map[string]StringID // string -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""}, // NoStringID maps to the empty string
		index: map[string]StringID{"": 0},
	}
}

// Intern stores the string and returns its ID.
// Interning the same string twice returns the same ID.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}

	// Keep a private copy so the interner never aliases a caller buffer.
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// InternBytes interns the bytes as a string and returns the ID.
func (i *Interner) InternBytes(b []byte) StringID {
	return i.Intern(string(b))
}

// Lookup returns the string for an ID.
// Invalid IDs return an empty string and false.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup returns the string for an ID and panics on invalid IDs.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// LookupID returns the ID already assigned to s without interning it.
func (i *Interner) LookupID(s string) (StringID, bool) {
	id, ok := i.index[s]
	return id, ok
}

// Has reports whether the ID is valid for this interner.
func (i *Interner) Has(id StringID) bool {
	return int(id) >= 0 && int(id) < len(i.byID)
}

// Len returns the number of interned strings, NoStringID included.
// It is never less than 1.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of every interned string in ID order.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}

// RestoreInterner rebuilds an interner from a Snapshot slice. The first
// entry must be the empty string; the IDs handed out match the slice
// positions, so references serialized against the snapshot stay valid.
func RestoreInterner(strs []string) *Interner {
	i := NewInterner()
	for _, s := range strs {
		i.Intern(s)
	}
	return i
}
