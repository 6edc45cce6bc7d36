package ir

// SuperclassIDs resolves the immediate supertypes of a class to their
// declarations. Supertype entries that do not name a class declaration
// are skipped here; Validate reports them.
func SuperclassIDs(m *Module, id ClassID) []ClassID {
	cls := m.Class(id)
	if cls == nil {
		return nil
	}
	out := make([]ClassID, 0, len(cls.Supertypes))
	for _, super := range cls.Supertypes {
		if sid := m.ClassOfType(super); sid.IsValid() {
			out = append(out, sid)
		}
	}
	return out
}

// IsImmediateSubclassOf reports whether super appears in sub's direct
// supertype list.
func IsImmediateSubclassOf(m *Module, sub, super ClassID) bool {
	if !sub.IsValid() || !super.IsValid() {
		return false
	}
	for _, sid := range SuperclassIDs(m, sub) {
		if sid == super {
			return true
		}
	}
	return false
}

// IsSubclassOf reports whether super is a strict transitive supertype of
// sub. The walk keeps a visited set, so malformed cyclic hierarchies
// terminate with false instead of looping; Validate is the place that
// reports the cycle itself.
func IsSubclassOf(m *Module, sub, super ClassID) bool {
	if !sub.IsValid() || !super.IsValid() || sub == super {
		return false
	}
	visited := make(map[ClassID]struct{})
	stack := SuperclassIDs(m, sub)
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if cur == super {
			return true
		}
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		stack = append(stack, SuperclassIDs(m, cur)...)
	}
	return false
}

// IsSameOrSubclassOf is the reflexive variant of IsSubclassOf.
func IsSameOrSubclassOf(m *Module, sub, super ClassID) bool {
	if sub.IsValid() && sub == super {
		return true
	}
	return IsSubclassOf(m, sub, super)
}

// Superclasses returns every transitive superclass of id in a
// deterministic first-encounter breadth-first order. Diamond ancestors
// appear once.
func Superclasses(m *Module, id ClassID) []ClassID {
	if !id.IsValid() {
		return nil
	}
	var order []ClassID
	seen := map[ClassID]struct{}{id: {}}
	queue := SuperclassIDs(m, id)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		order = append(order, cur)
		queue = append(queue, SuperclassIDs(m, cur)...)
	}
	return order
}

// hasSupertypeCycle reports whether the class can reach itself through
// supertype edges. Used by Validate.
func hasSupertypeCycle(m *Module, id ClassID) bool {
	visited := make(map[ClassID]struct{})
	stack := SuperclassIDs(m, id)
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if cur == id {
			return true
		}
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		stack = append(stack, SuperclassIDs(m, cur)...)
	}
	return false
}
