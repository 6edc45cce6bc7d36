// Package driver orchestrates snapshot processing for the command
// layer: loading .swm files, structural validation, the lowering
// passes, and parallel fan-out over batches of independent snapshots.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"swell/internal/diag"
	"swell/internal/ir"
	"swell/internal/irpack"
	"swell/internal/observ"
	"swell/internal/pipeline"
	"swell/internal/project"
	"swell/internal/source"
	"swell/internal/trace"
)

// LoadModule reads a snapshot file and rebuilds the module it holds.
func LoadModule(path string) (*ir.Module, error) {
	return irpack.Load(path)
}

// ValidateOptions configures single-file and batch validation.
type ValidateOptions struct {
	// MaxDiagnostics caps every per-file bag; non-positive uses the
	// manifest default.
	MaxDiagnostics int
	// EnableTimings records per-phase durations in the result.
	EnableTimings bool
	// Jobs bounds batch parallelism; non-positive uses GOMAXPROCS.
	Jobs int
	// Sink receives progress events; nil disables them.
	Sink pipeline.ProgressSink
}

func (o ValidateOptions) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return project.Default().Snapshot.MaxDiagnostics
}

// ValidateResult holds the outcome of validating one snapshot.
type ValidateResult struct {
	Path   string
	Module *ir.Module
	Bag    *diag.Bag
	Stages pipeline.Timings
	Timing *observ.Report
}

// OK reports whether the snapshot loaded and passed validation.
func (r ValidateResult) OK() bool {
	return r.Module != nil && !r.Bag.HasErrors()
}

// ValidateFile loads one snapshot and runs the structural validator.
// Failures land in the result bag; the file path stays as given so
// batch results line up with their inputs.
func ValidateFile(ctx context.Context, path string, opts ValidateOptions) ValidateResult {
	res := ValidateResult{
		Path: path,
		Bag:  diag.NewBag(opts.maxDiagnostics()),
	}

	ph := newPhaser(ctx, path, opts.EnableTimings, &res.Stages)
	defer func() { ph.close(fmt.Sprintf("diags=%d", res.Bag.Len())) }()

	load := ph.begin(pipeline.StageLoad)
	m, err := LoadModule(path)
	ph.end(load, "")
	if err != nil {
		addLoadDiagnostic(res.Bag, path, err)
		res.Timing = ph.finish(res.Bag, "validate", path)
		return res
	}
	res.Module = m

	check := ph.begin(pipeline.StageValidate)
	ir.ValidateReport(m, diag.BagReporter{Bag: res.Bag})
	note := ""
	if ph.active() {
		note = fmt.Sprintf("diags=%d", res.Bag.Len())
	}
	ph.end(check, note)

	res.Timing = ph.finish(res.Bag, "validate", path)
	return res
}

// phaser pairs the optional phase timer with per-snapshot trace spans
// and per-stage durations so stage code marks boundaries once, not per
// backend.
type phaser struct {
	timer    *observ.Timer
	tracer   trace.Tracer
	fileSpan *trace.Span
	stages   *pipeline.Timings
}

// phase is one open stage, valid until the matching end.
type phase struct {
	idx   int
	stage pipeline.Stage
	start time.Time
	span  *trace.Span
}

func newPhaser(ctx context.Context, path string, timings bool, stages *pipeline.Timings) *phaser {
	p := &phaser{tracer: trace.FromContext(ctx), stages: stages}
	if timings {
		p.timer = observ.NewTimer()
	}
	p.fileSpan = trace.Begin(p.tracer, trace.ScopeSnapshot, path, trace.CurrentSpan(ctx).SpanID)
	return p
}

func (p *phaser) active() bool {
	return p.timer != nil || p.tracer.Enabled()
}

func (p *phaser) begin(s pipeline.Stage) phase {
	ph := phase{idx: -1, stage: s, start: time.Now()}
	if p.timer != nil {
		ph.idx = p.timer.Begin(string(s))
	}
	ph.span = trace.Begin(p.tracer, trace.ScopeStage, string(s), p.fileSpan.ID())
	return ph
}

func (p *phaser) end(ph phase, note string) {
	ph.span.End(note)
	p.stages.Set(ph.stage, time.Since(ph.start))
	if p.timer != nil && ph.idx >= 0 {
		p.timer.End(ph.idx, note)
	}
}

// close ends the per-snapshot span. Safe to run once via defer.
func (p *phaser) close(detail string) {
	p.fileSpan.End(detail)
}

// finish closes out the timer: the report goes to the caller and into
// the bag as an ObsTimings diagnostic.
func (p *phaser) finish(bag *diag.Bag, kind, path string) *observ.Report {
	if p.timer == nil {
		return nil
	}
	report := p.timer.Report()
	appendTimingDiagnostic(bag, timingPayload{
		Kind:    kind,
		Path:    path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	})
	return &report
}

// addLoadDiagnostic classifies a snapshot read failure into the
// matching diagnostic code.
func addLoadDiagnostic(bag *diag.Bag, path string, err error) {
	code := diag.SnapCorrupt
	switch {
	case errors.Is(err, irpack.ErrSchemaMismatch):
		code = diag.SnapSchemaMismatch
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		code = diag.SnapReadError
	}
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     code,
		Message:  fmt.Sprintf("failed to load snapshot %s: %v", path, err),
		Primary:  source.Span{},
	})
}
