package model

// Situation describes where a vessel currently is relative to its body.
// Values are bit flags so experiment definitions can combine them into masks.
type Situation uint8

const (
	SrfLanded Situation = 1 << iota
	SrfSplashed
	FlyingLow
	FlyingHigh
	InSpaceLow
	InSpaceHigh
)

// String returns the identifier used in subject ids.
func (s Situation) String() string {
	switch s {
	case SrfLanded:
		return "SrfLanded"
	case SrfSplashed:
		return "SrfSplashed"
	case FlyingLow:
		return "FlyingLow"
	case FlyingHigh:
		return "FlyingHigh"
	case InSpaceLow:
		return "InSpaceLow"
	case InSpaceHigh:
		return "InSpaceHigh"
	default:
		return "unknown"
	}
}

// ParseSituation maps an identifier back to a Situation. Unknown names yield 0.
func ParseSituation(name string) Situation {
	for s := SrfLanded; s <= InSpaceHigh; s <<= 1 {
		if s.String() == name {
			return s
		}
	}
	return 0
}

// In reports whether s is part of mask.
func (s Situation) In(mask Situation) bool {
	return s != 0 && mask&s == s
}
