package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"swell/internal/diag"
	"swell/internal/ir"
	"swell/internal/irpack"
	"swell/internal/lower"
	"swell/internal/observ"
	"swell/internal/pipeline"
	"swell/internal/project"
	"swell/internal/source"
	"swell/internal/trace"
)

// LowerOptions configures the lowering pipeline.
type LowerOptions struct {
	// Passes selects which lowering passes run.
	Passes project.LowerSection
	// OutDir receives the lowered snapshots; empty rewrites each
	// input in place.
	OutDir string
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

func (o LowerOptions) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return project.Default().Snapshot.MaxDiagnostics
}

// LowerResult holds the outcome of lowering one snapshot.
type LowerResult struct {
	Path    string
	OutPath string
	Module  *ir.Module
	Bag     *diag.Bag
	Stats   lower.Stats
	Stages  pipeline.Timings
	Timing  *observ.Report
	Saved   bool
	// Err reports a pass abort on a graph the validator accepted,
	// which points at a defect rather than bad input.
	Err error
}

// OK reports whether the snapshot was lowered and written.
func (r LowerResult) OK() bool {
	return r.Err == nil && r.Saved && !r.Bag.HasErrors()
}

// OutPathFor returns where the lowered snapshot for path goes.
func OutPathFor(path, outDir string) string {
	if outDir == "" {
		return path
	}
	return filepath.Join(outDir, filepath.Base(path))
}

// LowerFile runs load, validate, the enabled passes, and save for one
// snapshot. A validation error stops the unit before any pass runs;
// nothing is written unless the module stayed sound.
func LowerFile(ctx context.Context, path string, opts LowerOptions) LowerResult {
	res := LowerResult{
		Path:    path,
		OutPath: OutPathFor(path, opts.OutDir),
		Bag:     diag.NewBag(opts.maxDiagnostics()),
	}

	ph := newPhaser(ctx, path, opts.EnableTimings, &res.Stages)
	defer func() { ph.close(fmt.Sprintf("saved=%t", res.Saved)) }()
	reporter := diag.BagReporter{Bag: res.Bag}

	stage := func(s pipeline.Stage, run func() (string, error)) bool {
		p := ph.begin(s)
		pipeline.EmitFile(opts.Sink, path, s, pipeline.StatusWorking, nil, 0)
		started := time.Now()
		note, err := run()
		ph.end(p, note)
		status := pipeline.StatusDone
		if err != nil || res.Bag.HasErrors() {
			status = pipeline.StatusError
		}
		pipeline.EmitFile(opts.Sink, path, s, status, err, time.Since(started))
		return status == pipeline.StatusDone
	}

	ok := stage(pipeline.StageLoad, func() (string, error) {
		m, err := LoadModule(path)
		if err != nil {
			addLoadDiagnostic(res.Bag, path, err)
			return "", nil
		}
		res.Module = m
		return "", nil
	})
	if !ok {
		res.Timing = ph.finish(res.Bag, "lower", path)
		return res
	}

	ok = stage(pipeline.StageValidate, func() (string, error) {
		ir.ValidateReport(res.Module, reporter)
		return fmt.Sprintf("diags=%d", res.Bag.Len()), nil
	})
	if !ok {
		res.Timing = ph.finish(res.Bag, "lower", path)
		return res
	}

	ok = stage(pipeline.StageLower, func() (string, error) {
		if opts.Passes.Devirtualize {
			stats, err := lower.Devirtualize(res.Module, reporter)
			res.Stats.Add(stats)
			if err != nil {
				res.Err = fmt.Errorf("devirtualize %s: %w", path, err)
				return "", res.Err
			}
		}
		if opts.Passes.StaticCalls {
			stats, err := lower.StaticCalls(res.Module, reporter)
			res.Stats.Add(stats)
			if err != nil {
				res.Err = fmt.Errorf("staticize %s: %w", path, err)
				return "", res.Err
			}
		}
		note := fmt.Sprintf("rewritten=%d synthesized=%d", res.Stats.CallsRewritten, res.Stats.Synthesized)
		return note, nil
	})
	if !ok {
		res.Timing = ph.finish(res.Bag, "lower", path)
		return res
	}

	stage(pipeline.StageSave, func() (string, error) {
		if err := irpack.Save(res.OutPath, res.Module); err != nil {
			res.Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.SnapWriteError,
				Message:  fmt.Sprintf("failed to write snapshot %s: %v", res.OutPath, err),
				Primary:  source.Span{},
			})
			return "", nil
		}
		res.Saved = true
		return "", nil
	})

	res.Timing = ph.finish(res.Bag, "lower", path)
	return res
}

// LowerFiles lowers every snapshot in parallel. Results align with the
// input order; per-file failures land in the result bags or Err, the
// returned error only reports cancellation.
func LowerFiles(ctx context.Context, files []string, opts LowerOptions) ([]LowerResult, error) {
	if len(files) == 0 {
		return nil, nil
	}

	pipeline.EmitQueued(opts.Sink, files)
	pipeline.EmitStage(opts.Sink, nil, pipeline.StageLower, pipeline.StatusWorking, nil, 0)
	batchStart := time.Now()

	// Each goroutine writes its own index, no mutex needed.
	results := make([]LowerResult, len(files))

	tracer := trace.FromContext(ctx)
	batch := trace.Begin(tracer, trace.ScopeDriver, "lower", trace.CurrentSpan(ctx).SpanID)
	defer func() { batch.End(fmt.Sprintf("files=%d", len(files))) }()
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: batch.ID()})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobLimit(opts.Jobs), len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				trace.Point(tracer, trace.ScopeSnapshot, path, "cancelled", batch.ID())
				return gctx.Err()
			default:
			}
			results[i] = LowerFile(gctx, path, opts)
			return nil
		})
	}

	err := g.Wait()
	status := pipeline.StatusDone
	if err != nil {
		status = pipeline.StatusError
	}
	pipeline.EmitStage(opts.Sink, nil, pipeline.StageLower, status, err, time.Since(batchStart))
	return results, err
}
