package diag

import (
	"testing"

	"swell/internal/source"
)

func TestFormatDiagnostics(t *testing.T) {
	files := source.NewFileTable()
	fileA := files.Add("src/shapes.sw")
	fileB := files.Add("src/main.sw")

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     ResAmbiguousTarget,
			Message:  "another",
			Primary:  source.Span{File: fileB, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     IRSupertypeCycle,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: fileA, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: fileA, Start: 2, End: 3}, Msg: "note line"},
			},
		},
	}

	expected := "warning RES2002 src/main.sw:2-3 another\n" +
		"error IR1002 src/shapes.sw:0-1 first line second\n" +
		"note IR1002 src/shapes.sw:2-3 note line"

	if got := FormatDiagnostics(diags, files, true); got != expected {
		t.Fatalf("unexpected rendering:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatDiagnosticsWithoutNotes(t *testing.T) {
	files := source.NewFileTable()
	f := files.Add("a.sw")

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     IRDanglingRef,
			Message:  "boom",
			Primary:  source.Span{File: f, Start: 5, End: 9},
			Notes:    []Note{{Span: source.Span{File: f}, Msg: "hidden"}},
		},
	}

	got := FormatDiagnostics(diags, files, false)
	want := "error IR1003 a.sw:5-9 boom"
	if got != want {
		t.Fatalf("FormatDiagnostics = %q, want %q", got, want)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(16)
	files := source.NewFileTable()
	f := files.Add("m.sw")

	d1 := NewError(IRVarargNotLast, source.Span{File: f, Start: 10, End: 12}, "vararg")
	d2 := NewWarning(ResAmbiguousTarget, source.Span{File: f, Start: 1, End: 2}, "ambiguous")

	bag.Add(d1)
	bag.Add(d1)
	bag.Add(d2)

	bag.Sort()
	bag.Dedup()

	if bag.Len() != 2 {
		t.Fatalf("after dedup Len = %d, want 2", bag.Len())
	}
	items := bag.Items()
	if items[0].Code != ResAmbiguousTarget {
		t.Errorf("sort should put the earlier span first, got %v", items[0].Code)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Error("bag should report both errors and warnings")
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(UnknownCode, source.Span{}, "one")) {
		t.Fatal("first Add should succeed")
	}
	if bag.Add(NewError(UnknownCode, source.Span{}, "two")) {
		t.Fatal("second Add should hit the limit")
	}
	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(16)
	r := NewDedupReporter(BagReporter{Bag: bag})

	sp := source.Span{File: 0, Start: 3, End: 7}
	r.Report(IRCallArity, SevError, sp, "too many arguments", nil)
	r.Report(IRCallArity, SevError, sp, "too many arguments", nil)
	r.Report(IRCallArity, SevError, sp, "different message", nil)

	if bag.Len() != 2 {
		t.Fatalf("dedup reporter passed %d diagnostics, want 2", bag.Len())
	}
}

func TestReportBuilder(t *testing.T) {
	bag := NewBag(8)
	r := BagReporter{Bag: bag}

	ReportError(r, IRSupertypeNotClass, source.Span{Start: 1, End: 4}, "supertype of C is not a class").
		WithNote(source.Span{Start: 9, End: 12}, "declared here").
		Emit()

	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != IRSupertypeNotClass || d.Severity != SevError {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "declared here" {
		t.Errorf("note not carried: %+v", d.Notes)
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		id   string
	}{
		{IRSupertypeCycle, "IR1002"},
		{ResOverrideCycle, "RES2001"},
		{LowDevirtualized, "LOW3001"},
		{SnapSchemaMismatch, "SNP4003"},
		{ProjMissingManifest, "PRJ5001"},
		{ObsTimings, "OBS6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("ID(%d) = %q, want %q", tt.code, got, tt.id)
		}
	}
}
