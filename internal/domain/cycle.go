package domain

// CycleName identifies a named training cycle. The backend assigns one of a
// fixed set based on readiness; athletes may override the recommendation with
// any other member of the set, never with a free-form value.
type CycleName string

const (
	CycleGreen CycleName = "Green" // foundation / base building
	CycleAmber CycleName = "Amber" // progressive build
	CycleRed   CycleName = "Red"   // peak / event preparation
)

// AllCycleNames returns the full enumerated set, in progression order
// (furthest from the event first).
func AllCycleNames() []CycleName {
	return []CycleName{CycleGreen, CycleAmber, CycleRed}
}

// IsValid reports whether the name is a member of the enumerated set.
func (c CycleName) IsValid() bool {
	switch c {
	case CycleGreen, CycleAmber, CycleRed:
		return true
	}
	return false
}

// Type returns the lowercase cycle type used as the timeline key in roadmaps.
func (c CycleName) Type() string {
	switch c {
	case CycleGreen:
		return "green"
	case CycleAmber:
		return "amber"
	case CycleRed:
		return "red"
	}
	return ""
}
