package diag

import (
	"fmt"
	"sort"
	"strings"

	"swell/internal/source"
)

type renderedDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Start    uint32
	End      uint32
	Message  string
}

// FormatDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation for CLI output and tests. Locations print as path:start-end
// in byte offsets; snapshots do not carry source text, so line and column
// numbers are not recoverable here.
func FormatDiagnostics(diags []Diagnostic, files *source.FileTable, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]renderedDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendRendered(rendered, &diags[i], files, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Start != dj.Start {
			return di.Start < dj.Start
		}
		if di.End != dj.End {
			return di.End < dj.End
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d-%d %s", d.Severity, d.Code, d.Path, d.Start, d.End, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendRendered(out []renderedDiagnostic, d *Diagnostic, files *source.FileTable, includeNotes bool) []renderedDiagnostic {
	out = append(out, renderedDiagnostic{
		Severity: severityLabel(d.Severity),
		Code:     d.Code.ID(),
		Path:     pathFor(files, d.Primary.File),
		Start:    d.Primary.Start,
		End:      d.Primary.End,
		Message:  sanitizeMessage(d.Message),
	})

	if includeNotes {
		for _, note := range d.Notes {
			out = append(out, renderedDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     pathFor(files, note.Span.File),
				Start:    note.Span.Start,
				End:      note.Span.End,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}

	return out
}

func pathFor(files *source.FileTable, id source.FileID) string {
	if files != nil {
		if p, ok := files.Path(id); ok && p != "" {
			return p
		}
	}
	return fmt.Sprintf("file#%d", id)
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
