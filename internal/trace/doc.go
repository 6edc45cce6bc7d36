// Package trace records what the snapshot pipeline is doing and when,
// to diagnose slow batches and hangs.
//
// Enable it via command-line flags:
//
//	swell-ir validate --trace=- --trace-level=phase pets.swm
//
// Tracer implementations:
//
//   - Nop: zero overhead when tracing is off
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: last-N circular buffer for post-mortem dumps
//   - MultiTracer: fan-out to several tracers
//
// Levels gate how deep the recorded spans go:
//
//   - LevelOff: nothing
//   - LevelError: only post-mortem ring dumps
//   - LevelPhase: batch and per-snapshot boundaries
//   - LevelDetail: stage boundaries inside a snapshot
//   - LevelDebug: everything including call-site events
//
// Scopes mirror the pipeline nesting:
//
//   - ScopeDriver: one CLI operation over a batch
//   - ScopeSnapshot: one snapshot inside the batch
//   - ScopeStage: load, validate, lower, save
//   - ScopeCall: individual call sites (reserved)
//
// The tracer travels through the pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeStage, "load", parentID)
//	defer span.End("")
package trace
