package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	time.Sleep(time.Millisecond)
	tm.End(idx, "1 file")

	report := tm.Report()
	if len(report.Phases) != 1 {
		t.Fatalf("want 1 phase, got %d", len(report.Phases))
	}
	p := report.Phases[0]
	if p.Name != "load" || p.Note != "1 file" {
		t.Fatalf("unexpected phase: %+v", p)
	}
	if p.DurationMS <= 0 {
		t.Fatalf("phase duration not recorded: %v", p.DurationMS)
	}
	if report.TotalMS < p.DurationMS {
		t.Fatalf("total %v below phase %v", report.TotalMS, p.DurationMS)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if len(tm.Report().Phases) != 0 {
		t.Fatal("out-of-range End created a phase")
	}
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("validate")
	tm.End(idx, "")

	s := tm.Summary()
	if !strings.Contains(s, "validate") || !strings.Contains(s, "total") {
		t.Fatalf("summary missing rows:\n%s", s)
	}
}
