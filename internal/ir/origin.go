package ir

// Origin records how a declaration entered the module.
type Origin uint8

const (
	// OriginSource marks declarations written by the user.
	OriginSource Origin = iota
	// OriginFakeOverride marks inherited stubs the front end materializes
	// in every subclass for each visible supertype member. They carry no
	// body and exist so member lookup stays local to the class.
	OriginFakeOverride
	// OriginSynthetic marks declarations produced by lowering passes.
	OriginSynthetic
)

func (o Origin) String() string {
	switch o {
	case OriginSource:
		return "source"
	case OriginFakeOverride:
		return "fake_override"
	case OriginSynthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

// IsReal reports whether the declaration is an actual member rather than
// an inherited stub. Synthetic declarations count as real.
func (o Origin) IsReal() bool {
	return o != OriginFakeOverride
}
