package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"swell/internal/pipeline"
	"swell/internal/trace"
)

// SnapshotExt is the file extension batch commands look for.
const SnapshotExt = ".swm"

// ListSnapshots returns the sorted list of all *.swm files under dir.
func ListSnapshots(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SnapshotExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ValidateFiles validates every snapshot in parallel. Results align
// with the input order regardless of completion order. Per-file
// failures land in the result bags; the returned error only reports
// cancellation.
func ValidateFiles(ctx context.Context, files []string, opts ValidateOptions) ([]ValidateResult, error) {
	if len(files) == 0 {
		return nil, nil
	}

	pipeline.EmitQueued(opts.Sink, files)
	pipeline.EmitStage(opts.Sink, nil, pipeline.StageValidate, pipeline.StatusWorking, nil, 0)
	batchStart := time.Now()

	// Each goroutine writes its own index, no mutex needed.
	results := make([]ValidateResult, len(files))

	tracer := trace.FromContext(ctx)
	batch := trace.Begin(tracer, trace.ScopeDriver, "validate", trace.CurrentSpan(ctx).SpanID)
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

			pipeline.EmitFile(opts.Sink, path, pipeline.StageValidate, pipeline.StatusWorking, nil, 0)
			started := time.Now()
			res := ValidateFile(gctx, path, opts)
			results[i] = res

			status := pipeline.StatusDone
			if !res.OK() {
				status = pipeline.StatusError
			}
			pipeline.EmitFile(opts.Sink, path, pipeline.StageValidate, status, nil, time.Since(started))
			return nil
		})
	}

	err := g.Wait()
	status := pipeline.StatusDone
	if err != nil {
		status = pipeline.StatusError
	}
	pipeline.EmitStage(opts.Sink, nil, pipeline.StageValidate, status, err, time.Since(batchStart))
	return results, err
}

// ValidateDir validates every snapshot found under dir.
func ValidateDir(ctx context.Context, dir string, opts ValidateOptions) ([]ValidateResult, error) {
	files, err := ListSnapshots(dir)
	if err != nil {
		return nil, err
	}
	return ValidateFiles(ctx, files, opts)
}

func jobLimit(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return jobs
}
