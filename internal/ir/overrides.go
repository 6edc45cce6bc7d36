package ir

import "fmt"

// memberHandle constrains the override walker to declaration handles.
type memberHandle interface {
	~uint32
}

// memberGraph is what the walker needs to know about one arena: the
// override edges of a member, whether it is real, and a printable name
// for error messages. ok is false for dangling handles.
type memberGraph[T memberHandle] struct {
	look     func(T) (edges []T, real bool, ok bool)
	describe func(T) string
}

// collectReal walks the override graph of start up to the nearest real
// members, then drops every candidate that another candidate already
// overrides. The result keeps the first-encounter order of the initial
// depth-first walk, so callers get deterministic output.
//
// The second pass walks each candidate's ancestor edges. Reaching the
// candidate itself means the override graph is cyclic, which is a
// malformed-module error rather than an empty result.
func collectReal[T memberHandle](start T, g memberGraph[T]) ([]T, error) {
	startEdges, startReal, ok := g.look(start)
	if !ok {
		return nil, fmt.Errorf("ir: %s refers to a missing declaration", g.describe(start))
	}
	if startReal {
		return []T{start}, nil
	}

	var ordered []T
	collected := make(map[T]struct{})
	visited := make(map[T]struct{})

	var walk func(T) error
	walk = func(id T) error {
		if _, seen := visited[id]; seen {
			return nil
		}
		visited[id] = struct{}{}
		edges, real, ok := g.look(id)
		if !ok {
			return fmt.Errorf("ir: %s overrides a missing declaration %s", g.describe(start), g.describe(id))
		}
		if real {
			if _, dup := collected[id]; !dup {
				collected[id] = struct{}{}
				ordered = append(ordered, id)
			}
			return nil
		}
		for _, e := range edges {
			if err := walk(e); err != nil {
				return err
			}
		}
		return nil
	}
	for _, e := range startEdges {
		if err := walk(e); err != nil {
			return nil, err
		}
	}

	subsumed := make(map[T]struct{})
	for _, cand := range ordered {
		edges, _, _ := g.look(cand)
		seen := make(map[T]struct{})
		stack := append([]T(nil), edges...)
		for len(stack) > 0 {
			n := len(stack) - 1
			cur := stack[n]
			stack = stack[:n]
			if cur == cand {
				return nil, fmt.Errorf("ir: override cycle through %s", g.describe(cand))
			}
			if _, dup := seen[cur]; dup {
				continue
			}
			seen[cur] = struct{}{}
			if _, isCand := collected[cur]; isCand {
				subsumed[cur] = struct{}{}
			}
			more, _, ok := g.look(cur)
			if !ok {
				return nil, fmt.Errorf("ir: %s overrides a missing declaration %s", g.describe(cand), g.describe(cur))
			}
			stack = append(stack, more...)
		}
	}
	if len(subsumed) == 0 {
		return ordered, nil
	}
	out := ordered[:0]
	for _, cand := range ordered {
		if _, drop := subsumed[cand]; !drop {
			out = append(out, cand)
		}
	}
	return out, nil
}

func funcGraph(m *Module) memberGraph[FuncID] {
	return memberGraph[FuncID]{
		look: func(id FuncID) ([]FuncID, bool, bool) {
			f := m.Func(id)
			if f == nil {
				return nil, false, false
			}
			return f.Overridden, f.IsReal(), true
		},
		describe: func(id FuncID) string { return describeFunc(m, id) },
	}
}

func fieldGraph(m *Module) memberGraph[FieldID] {
	return memberGraph[FieldID]{
		look: func(id FieldID) ([]FieldID, bool, bool) {
			f := m.Field(id)
			if f == nil {
				return nil, false, false
			}
			return f.Overridden, f.IsReal(), true
		},
		describe: func(id FieldID) string { return describeField(m, id) },
	}
}

// CollectRealOverrides returns the real functions fn ultimately
// overrides, nearest first. A real fn collects to itself. In diamond
// hierarchies each ancestor appears once, and ancestors that another
// collected candidate overrides are dropped, so the result holds only
// the most derived implementations.
func CollectRealOverrides(m *Module, fn FuncID) ([]FuncID, error) {
	return collectReal(fn, funcGraph(m))
}

// CollectRealFieldOverrides is the field counterpart of
// CollectRealOverrides.
func CollectRealFieldOverrides(m *Module, field FieldID) ([]FieldID, error) {
	return collectReal(field, fieldGraph(m))
}

// ResolveFakeOverride finds the concrete implementation behind an
// inherited stub: the unique non-abstract real function it overrides.
// Real functions resolve to themselves. When no or several concrete
// implementations exist the result is absent (NoFuncID) without an
// error; errors are reserved for malformed override graphs.
func ResolveFakeOverride(m *Module, fn FuncID) (FuncID, error) {
	f := m.Func(fn)
	if f == nil {
		return NoFuncID, nil
	}
	if f.IsReal() {
		return fn, nil
	}
	candidates, err := CollectRealOverrides(m, fn)
	if err != nil {
		return NoFuncID, err
	}
	impl := NoFuncID
	for _, cand := range candidates {
		if m.Func(cand).IsAbstract() {
			continue
		}
		if impl.IsValid() {
			return NoFuncID, nil
		}
		impl = cand
	}
	return impl, nil
}

// ResolveFakeFieldOverride finds the real field behind an inherited
// field stub. Fields have no abstract flavor, so the stub resolves to
// the unique real field it overrides and is absent when the hierarchy
// offers several.
func ResolveFakeFieldOverride(m *Module, field FieldID) (FieldID, error) {
	f := m.Field(field)
	if f == nil {
		return NoFieldID, nil
	}
	if f.IsReal() {
		return field, nil
	}
	candidates, err := CollectRealFieldOverrides(m, field)
	if err != nil {
		return NoFieldID, err
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	return NoFieldID, nil
}

func describeFunc(m *Module, id FuncID) string {
	f := m.Func(id)
	if f == nil {
		return FuncKey(id).String()
	}
	if f.Owner.IsValid() {
		return m.ClassName(f.Owner) + "." + m.NameOf(f.Name)
	}
	return m.NameOf(f.Name)
}

func describeField(m *Module, id FieldID) string {
	f := m.Field(id)
	if f == nil {
		return FieldKey(id).String()
	}
	if f.Owner.IsValid() {
		return m.ClassName(f.Owner) + "." + m.NameOf(f.Name)
	}
	return m.NameOf(f.Name)
}
