package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint is an instant event with no duration.
	KindPoint
	// KindHeartbeat is the periodic liveness signal.
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope places an event in the pipeline nesting. Lower numeric values
// are coarser.
type Scope uint8

const (
	// ScopeDriver covers one CLI operation over a whole batch.
	ScopeDriver Scope = iota + 1
	// ScopeSnapshot covers the processing of one snapshot file.
	ScopeSnapshot
	// ScopeStage covers one stage inside a snapshot: load, validate,
	// lower, save.
	ScopeStage
	// ScopeCall is reserved for per-call-site events.
	ScopeCall
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeSnapshot:
		return "snapshot"
	case ScopeStage:
		return "stage"
	case ScopeCall:
		return "call"
	default:
		return "unknown"
	}
}

// Event is a single trace record. Seq is assigned once at creation;
// sinks store and format events without touching them.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64
	Name     string            // "validate", "load", "pets.swm"
	Detail   string            // optional free-form note
	Extra    map[string]string // extensible key-value pairs
}
