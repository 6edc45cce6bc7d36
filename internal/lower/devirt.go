package lower

import (
	"fmt"

	"swell/internal/diag"
	"swell/internal/ir"
)

// Devirtualize re-targets calls aimed at fake overrides. For every call
// whose target is a fake override the pass resolves the real
// implementation; when exactly one non-abstract implementation exists
// the call is rewritten at it, receivers and arguments unchanged. Calls
// without a unique implementation stay virtual and are counted, with a
// warning per site. Resolution failures on a malformed override graph
// abort the pass.
func Devirtualize(m *ir.Module, r diag.Reporter) (Stats, error) {
	var stats Stats
	var firstErr error

	visitModuleExprs(m, func(slot **ir.Expr) {
		if firstErr != nil {
			return
		}
		call, ok := (*slot).AsCall()
		if !ok {
			return
		}
		stats.CallsExamined++

		target := m.Func(call.Target)
		if target == nil || !target.IsFakeOverride() {
			return
		}
		impl, err := ir.ResolveFakeOverride(m, call.Target)
		if err != nil {
			firstErr = fmt.Errorf("lower: devirtualize %s: %w", m.FuncName(call.Target), err)
			return
		}
		if !impl.IsValid() {
			stats.Ambiguous++
			diag.ReportWarning(r, diag.LowSkippedAmbiguous, (*slot).Span,
				fmt.Sprintf("call to %s stays virtual, no unique real implementation", describeMember(m, call.Target))).
				Emit()
			return
		}

		rewritten, err := ir.RewriteCall(m, *slot, impl, ir.RewriteOptions{})
		if err != nil {
			firstErr = fmt.Errorf("lower: devirtualize %s: %w", m.FuncName(call.Target), err)
			return
		}
		*slot = rewritten
		stats.CallsRewritten++
		diag.ReportInfo(r, diag.LowDevirtualized, rewritten.Span,
			fmt.Sprintf("call to %s devirtualized to %s", describeMember(m, call.Target), describeMember(m, impl))).
			Emit()
	})

	return stats, firstErr
}

// describeMember renders "Class.name" or a bare name for top-level
// functions, matching the resolver's error texts.
func describeMember(m *ir.Module, fn ir.FuncID) string {
	f := m.Func(fn)
	if f == nil {
		return "?"
	}
	if f.Owner.IsValid() {
		return m.ClassName(f.Owner) + "." + m.NameOf(f.Name)
	}
	return m.NameOf(f.Name)
}
