package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reason codes attached to a readiness recommendation. Each code names one
// rule signal that contributed to the chosen cycle.
const (
	ReasonBeginnerExperience     = "BEGINNER_EXPERIENCE"
	ReasonIntermediateExperience = "INTERMEDIATE_EXPERIENCE"
	ReasonAdvancedExperience     = "ADVANCED_EXPERIENCE"
	ReasonLongRunway             = "LONG_RUNWAY"
	ReasonModerateRunway         = "MODERATE_RUNWAY"
	ReasonShortRunway            = "SHORT_RUNWAY"
	ReasonNoEventDate            = "NO_EVENT_DATE"
)

// ReadinessRecommendation is the server-computed suggestion of which cycle an
// athlete should enter next. Immutable once produced; the client holds it for
// the duration of wizard steps two and three and discards it on restart.
type ReadinessRecommendation struct {
	RecommendedCycle     CycleName           `bson:"recommendedCycle" json:"recommendedCycle"`
	Confidence           float64             `bson:"confidence" json:"confidence"` // 0..1
	Reason               string              `bson:"reason" json:"reason"`
	ReasonCodes          []string            `bson:"reasonCodes" json:"reasonCodes"`
	WeeksToEvent         int                 `bson:"weeksToEvent" json:"weeksToEvent"`
	RecommendedProgramID *primitive.ObjectID `bson:"recommendedProgramId,omitempty" json:"recommendedProgramId,omitempty"`
	TransitionNote       string              `bson:"transitionNote,omitempty" json:"transitionNote,omitempty"`
}
