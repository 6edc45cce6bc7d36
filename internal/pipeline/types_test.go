package pipeline_test

import (
	"testing"
	"time"

	"swell/internal/pipeline"
)

func TestTimings(t *testing.T) {
	var tm pipeline.Timings
	if tm.Has(pipeline.StageLoad) {
		t.Fatal("fresh timings report the load stage")
	}
	tm.Set(pipeline.StageLoad, 10*time.Millisecond)
	tm.Set(pipeline.StageLower, 30*time.Millisecond)

	if !tm.Has(pipeline.StageLoad) {
		t.Fatal("load stage missing after Set")
	}
	if got := tm.Duration(pipeline.StageLower); got != 30*time.Millisecond {
		t.Fatalf("lower duration = %v", got)
	}
	if got := tm.Sum(pipeline.StageLoad, pipeline.StageLower, pipeline.StageSave); got != 40*time.Millisecond {
		t.Fatalf("sum = %v", got)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan pipeline.Event, 4)
	sink := pipeline.ChannelSink{Ch: ch}
	sink.OnEvent(pipeline.Event{File: "a.swm", Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})

	evt := <-ch
	if evt.File != "a.swm" || evt.Stage != pipeline.StageLoad {
		t.Fatalf("unexpected event: %+v", evt)
	}

	// A sink without a channel drops events instead of panicking.
	pipeline.ChannelSink{}.OnEvent(pipeline.Event{})
}

func TestEmitStageFansOut(t *testing.T) {
	ch := make(chan pipeline.Event, 8)
	files := []string{"a.swm", "b.swm"}
	pipeline.EmitStage(pipeline.ChannelSink{Ch: ch}, files, pipeline.StageValidate, pipeline.StatusDone, nil, time.Second)
	close(ch)

	var overall, perFile int
	for evt := range ch {
		if evt.File == "" {
			overall++
		} else {
			perFile++
		}
		if evt.Stage != pipeline.StageValidate || evt.Status != pipeline.StatusDone {
			t.Fatalf("unexpected event: %+v", evt)
		}
	}
	if overall != 1 || perFile != 2 {
		t.Fatalf("want 1 overall and 2 per-file events, got %d and %d", overall, perFile)
	}
}

func TestNormalizeFiles(t *testing.T) {
	got := pipeline.NormalizeFiles([]string{"./b.swm", "a.swm", "b.swm", ""}, "")
	if len(got) != 2 || got[0] != "a.swm" || got[1] != "b.swm" {
		t.Fatalf("normalized = %v", got)
	}
}
