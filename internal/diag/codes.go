package diag

import (
	"fmt"
)

type Code uint16

const (
	// Unknown error, used when nothing better fits
	UnknownCode Code = 0

	// Structural IR validation
	IRInfo                 Code = 1000
	IRSupertypeNotClass    Code = 1001
	IRSupertypeCycle       Code = 1002
	IRDanglingRef          Code = 1003
	IROverrideKindMismatch Code = 1004
	IRReceiverOrder        Code = 1005
	IRVarargNotLast        Code = 1006
	IRVarargElemMissing    Code = 1007
	IRDefaultOnReceiver    Code = 1008
	IRCallArity            Code = 1009
	IRAbstractWithBody     Code = 1010
	IRFakeOverrideHasBody  Code = 1011
	IRConstructorOverride  Code = 1012
	IRTypeArgArity         Code = 1013

	// Hierarchy and override resolution
	ResInfo             Code = 2000
	ResOverrideCycle    Code = 2001
	ResAmbiguousTarget  Code = 2002
	ResNoImplementation Code = 2003

	// Lowering passes
	LowInfo             Code = 3000
	LowDevirtualized    Code = 3001
	LowSkippedAmbiguous Code = 3002
	LowStaticized       Code = 3003

	// Snapshot I/O
	SnapReadError      Code = 4001
	SnapWriteError     Code = 4002
	SnapSchemaMismatch Code = 4003
	SnapCorrupt        Code = 4004

	// Project / manifest
	ProjInfo              Code = 5000
	ProjMissingManifest   Code = 5001
	ProjDuplicateModule   Code = 5002
	ProjInvalidModuleName Code = 5003
	ProjMissingSnapshot   Code = 5004

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode: "Unknown error",

		IRInfo:                 "IR information",
		IRSupertypeNotClass:    "Supertype is not a class type",
		IRSupertypeCycle:       "Supertype cycle",
		IRDanglingRef:          "Reference to a missing declaration",
		IROverrideKindMismatch: "Override target has a different declaration kind",
		IRReceiverOrder:        "Receiver parameters out of order",
		IRVarargNotLast:        "Vararg parameter is not last",
		IRVarargElemMissing:    "Vararg parameter lacks an element type",
		IRDefaultOnReceiver:    "Receiver parameter has a default value",
		IRCallArity:            "Call has more arguments than the target has parameters",
		IRAbstractWithBody:     "Abstract function has a body",
		IRFakeOverrideHasBody:  "Inherited stub has a body",
		IRConstructorOverride:  "Constructor marked as override",
		IRTypeArgArity:         "Call type-argument count differs from the target's generic arity",

		ResInfo:             "Resolution information",
		ResOverrideCycle:    "Override graph cycle",
		ResAmbiguousTarget:  "Multiple implementations satisfy the call",
		ResNoImplementation: "No concrete implementation found",

		LowInfo:             "Lowering information",
		LowDevirtualized:    "Call devirtualized",
		LowSkippedAmbiguous: "Call left virtual, target ambiguous",
		LowStaticized:       "Member call rewritten to a static call",

		SnapReadError:      "Cannot read snapshot",
		SnapWriteError:     "Cannot write snapshot",
		SnapSchemaMismatch: "Snapshot schema version mismatch",
		SnapCorrupt:        "Snapshot is corrupt",

		ProjInfo:              "Project information",
		ProjMissingManifest:   "Project manifest not found",
		ProjDuplicateModule:   "Duplicate module name in project",
		ProjInvalidModuleName: "Invalid module name",
		ProjMissingSnapshot:   "Module snapshot listed in manifest is missing",

		ObsInfo:    "Observability information",
		ObsTimings: "Phase timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("SNP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
