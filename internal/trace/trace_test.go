package trace

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("PHASE")
	if err != nil || lvl != LevelPhase {
		t.Fatalf("ParseLevel(PHASE) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestShouldEmitGatesByScope(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopeDriver) || !LevelPhase.ShouldEmit(ScopeSnapshot) {
		t.Fatal("phase level should pass driver and snapshot scopes")
	}
	if LevelPhase.ShouldEmit(ScopeStage) {
		t.Fatal("phase level should gate stage scope")
	}
	if !LevelDetail.ShouldEmit(ScopeStage) {
		t.Fatal("detail level should pass stage scope")
	}
	if LevelDetail.ShouldEmit(ScopeCall) {
		t.Fatal("detail level should gate call scope")
	}
	if !LevelDebug.ShouldEmit(ScopeCall) {
		t.Fatal("debug level should pass everything")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Fatal("off level should gate everything")
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(4, LevelDebug)
	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, name := range names {
		ring.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeStage, Name: name})
	}

	got := ring.Snapshot()
	if len(got) != 4 {
		t.Fatalf("want 4 events after wrap, got %d", len(got))
	}
	for i, want := range []string{"c", "d", "e", "f"} {
		if got[i].Name != want {
			t.Fatalf("event %d = %q, want %q", i, got[i].Name, want)
		}
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 4 {
		t.Fatalf("dump wrote %d lines, want 4", lines)
	}
}

func TestRingTracerCapturesAtErrorLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	ring.Emit(&Event{Time: time.Now(), Kind: KindSpanBegin, Scope: ScopeStage, Name: "load"})
	if len(ring.Snapshot()) != 1 {
		t.Fatal("error level ring should capture silently")
	}
}

func TestStreamTracerFormats(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDetail, FormatText)
	st.Emit(&Event{Time: time.Now(), Kind: KindSpanBegin, Scope: ScopeStage, Name: "load", Detail: "pets.swm"})
	if out := buf.String(); !strings.Contains(out, "load") || !strings.Contains(out, "pets.swm") {
		t.Fatalf("text output missing fields: %q", out)
	}

	buf.Reset()
	st = NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	st.Emit(&Event{Time: time.Now(), Kind: KindSpanEnd, Scope: ScopeSnapshot, SpanID: 7, Name: "pets.swm"})
	out := buf.String()
	if !strings.Contains(out, `"name":"pets.swm"`) || !strings.Contains(out, `"kind":"end"`) {
		t.Fatalf("ndjson output missing fields: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatal("ndjson events must be newline-delimited")
	}
}

func TestSpanLifecycle(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	span := Begin(ring, ScopeStage, "validate", 3)
	if span.ID() == 0 {
		t.Fatal("enabled span should have an ID")
	}
	span.WithExtra("diags", "0").End("ok")

	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("want begin+end, got %d events", len(events))
	}
	begin, end := events[0], events[1]
	if begin.Kind != KindSpanBegin || end.Kind != KindSpanEnd {
		t.Fatalf("unexpected kinds: %v, %v", begin.Kind, end.Kind)
	}
	if begin.SpanID != end.SpanID || begin.ParentID != 3 {
		t.Fatalf("span identity mismatch: %+v vs %+v", begin, end)
	}
	if end.Detail != "ok" || end.Extra["diags"] != "0" {
		t.Fatalf("end payload lost: %+v", end)
	}
}

func TestDisabledSpanIsInert(t *testing.T) {
	span := Begin(Nop, ScopeDriver, "validate", 0)
	if span.ID() != 0 {
		t.Fatal("nop span should have no ID")
	}
	if d := span.End("ignored"); d != 0 {
		t.Fatalf("nop span reported duration %v", d)
	}

	// Filtered by level, not by tracer.
	ring := NewRingTracer(4, LevelPhase)
	span = Begin(ring, ScopeStage, "load", 0)
	span.End("")
	if len(ring.Snapshot()) != 0 {
		t.Fatal("stage span should be gated at phase level")
	}
}
