package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingExperience buckets used by the readiness rules.
type TrainingExperience string

const (
	ExperienceBeginner     TrainingExperience = "BEGINNER"
	ExperienceIntermediate TrainingExperience = "INTERMEDIATE"
	ExperienceAdvanced     TrainingExperience = "ADVANCED"
)

// OnboardingProfile carries the physical and training attributes an athlete
// enters in the first wizard step. The client holds it in memory only; it is
// sent to the server at evaluate time and persisted only by the confirm call.
type OnboardingProfile struct {
	Height             float64            `bson:"height" json:"height"`
	Weight             float64            `bson:"weight" json:"weight"`
	Age                int                `bson:"age" json:"age"`
	Gender             string             `bson:"gender" json:"gender"`
	TrainingExperience TrainingExperience `bson:"trainingExperience" json:"trainingExperience"`
	PrimaryGoal        string             `bson:"primaryGoal" json:"primaryGoal"`
	SecondaryGoal      string             `bson:"secondaryGoal" json:"secondaryGoal"`
	Equipment          []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`
	EventDate          string             `bson:"eventDate,omitempty" json:"eventDate,omitempty"` // "2006-01-02"
	Occupation         string             `bson:"occupation,omitempty" json:"occupation,omitempty"`
}

// CycleSelection is the athlete's decision on step three: the chosen cycle
// plus a flag distinguishing "accepted the recommendation" from a manual
// override. Sent exactly once, to the confirm-transition endpoint.
type CycleSelection struct {
	CycleName CycleName           `bson:"cycleName" json:"cycleName"`
	Confirmed bool                `bson:"confirmed" json:"confirmed"`
	ProgramID *primitive.ObjectID `bson:"programId,omitempty" json:"programId,omitempty"`
}

// OnboardingStatus tracks the lifecycle of an onboarding attempt.
type OnboardingStatus string

const (
	OnboardingPending   OnboardingStatus = "pending"   // profile evaluated, nothing persisted beyond the draft
	OnboardingConfirmed OnboardingStatus = "confirmed" // cycle transition confirmed, roadmap generated
	OnboardingCompleted OnboardingStatus = "completed" // athlete reached the dashboard
)

// Onboarding is the server-side record of one onboarding attempt. Steps one
// and two only create or overwrite a pending record (defer-save); the confirm
// call is the single write that moves it to confirmed.
type Onboarding struct {
	ID             primitive.ObjectID        `bson:"_id,omitempty" json:"id"`
	AthleteID      primitive.ObjectID        `bson:"athleteId" json:"athleteId"`
	AttemptID      string                    `bson:"attemptId" json:"attemptId"` // uuid, one per attempt
	Profile        OnboardingProfile         `bson:"profile" json:"profile"`
	Recommendation *ReadinessRecommendation  `bson:"recommendation,omitempty" json:"recommendation,omitempty"`
	Selection      *CycleSelection           `bson:"selection,omitempty" json:"selection,omitempty"`
	Status         OnboardingStatus          `bson:"status" json:"status"`
	CreatedAt      time.Time                 `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time                 `bson:"updatedAt" json:"updatedAt"`
	ConfirmedAt    *time.Time                `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
}
