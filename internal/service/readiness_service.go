package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidProfile   = errors.New("profile is missing required readiness attributes")
	ErrNoRecommendation = errors.New("no readiness recommendation available; evaluate a profile first")
)

// Confidence scoring: a fixed base plus a step per rule signal that voted for
// the chosen cycle. Two agreeing signals land on 0.82.
const (
	confidenceBase = 0.58
	confidenceStep = 0.12
)

// --- Service Interface ---

// ReadinessService computes cycle recommendations from onboarding profiles.
// Evaluate is a pure preview: repeatable, side-effect-free. Persistence only
// happens later, at the cycle-transition confirm step.
type ReadinessService interface {
	Evaluate(ctx context.Context, profile domain.OnboardingProfile) (*domain.ReadinessRecommendation, error)
	CurrentRecommendation(ctx context.Context, athleteID primitive.ObjectID) (*domain.ReadinessRecommendation, error)
}

// --- Service Implementation ---

type readinessService struct {
	onboardingRepo repository.OnboardingRepository
	programRepo    repository.ProgramRepository
	now            func() time.Time
}

// NewReadinessService creates a new instance of readinessService.
func NewReadinessService(onboardingRepo repository.OnboardingRepository, programRepo repository.ProgramRepository) ReadinessService {
	return &readinessService{
		onboardingRepo: onboardingRepo,
		programRepo:    programRepo,
		now:            time.Now,
	}
}

// Evaluate applies the readiness rules to a candidate profile. Two signals
// vote for a cycle: training experience and the runway to the athlete's
// event. When they disagree, the more conservative cycle (earlier in the
// Green -> Amber -> Red progression) wins.
func (s *readinessService) Evaluate(ctx context.Context, profile domain.OnboardingProfile) (*domain.ReadinessRecommendation, error) {
	if profile.TrainingExperience == "" || profile.PrimaryGoal == "" {
		return nil, ErrInvalidProfile
	}

	weeks := weeksToEvent(profile.EventDate, s.now())

	expCycle, expCode := experienceSignal(profile.TrainingExperience)
	runCycle, runCode := runwaySignal(profile.EventDate, weeks)

	chosen := expCycle
	if cycleRank(runCycle) < cycleRank(expCycle) {
		chosen = runCycle
	}

	votes := 0
	if expCycle == chosen {
		votes++
	}
	if runCycle == chosen {
		votes++
	}

	rec := &domain.ReadinessRecommendation{
		RecommendedCycle: chosen,
		Confidence:       confidenceBase + confidenceStep*float64(votes),
		ReasonCodes:      []string{expCode, runCode},
		WeeksToEvent:     weeks,
		Reason:           reasonText(chosen, profile.TrainingExperience, weeks, votes),
	}
	if runCode == domain.ReasonShortRunway {
		rec.TransitionNote = "Limited runway before the event; expect an abbreviated build."
	}

	// Attach a program suggestion when a matching template exists. Absence
	// is not an error; the recommendation stands on its own.
	if s.programRepo != nil {
		program, err := s.programRepo.FindByCycleAndGoal(ctx, chosen, profile.PrimaryGoal)
		if err == nil {
			rec.RecommendedProgramID = &program.ID
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	return rec, nil
}

// CurrentRecommendation returns the recommendation attached to the athlete's
// pending onboarding attempt, recomputing it from the stored profile when the
// snapshot is missing.
func (s *readinessService) CurrentRecommendation(ctx context.Context, athleteID primitive.ObjectID) (*domain.ReadinessRecommendation, error) {
	onboarding, err := s.onboardingRepo.GetPendingByAthleteID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoRecommendation
		}
		return nil, err
	}
	if onboarding.Recommendation != nil {
		return onboarding.Recommendation, nil
	}
	return s.Evaluate(ctx, onboarding.Profile)
}

// --- Rule helpers ---

// weeksToEvent returns the whole weeks remaining until the event date,
// rounded up. Zero when the date is absent, unparseable or already past.
func weeksToEvent(eventDate string, now time.Time) int {
	if eventDate == "" {
		return 0
	}
	event, err := time.Parse("2006-01-02", eventDate)
	if err != nil {
		return 0
	}
	days := int(event.Sub(now).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}

func experienceSignal(exp domain.TrainingExperience) (domain.CycleName, string) {
	switch exp {
	case domain.ExperienceAdvanced:
		return domain.CycleRed, domain.ReasonAdvancedExperience
	case domain.ExperienceIntermediate:
		return domain.CycleAmber, domain.ReasonIntermediateExperience
	default:
		return domain.CycleGreen, domain.ReasonBeginnerExperience
	}
}

func runwaySignal(eventDate string, weeks int) (domain.CycleName, string) {
	switch {
	case eventDate == "" || weeks == 0:
		return domain.CycleGreen, domain.ReasonNoEventDate
	case weeks >= 16:
		return domain.CycleGreen, domain.ReasonLongRunway
	case weeks >= 8:
		return domain.CycleAmber, domain.ReasonModerateRunway
	default:
		return domain.CycleRed, domain.ReasonShortRunway
	}
}

// cycleRank orders cycles by conservativeness; lower is more conservative.
func cycleRank(c domain.CycleName) int {
	switch c {
	case domain.CycleGreen:
		return 0
	case domain.CycleAmber:
		return 1
	default:
		return 2
	}
}

func reasonText(cycle domain.CycleName, exp domain.TrainingExperience, weeks, votes int) string {
	runway := "no fixed event date"
	if weeks > 0 {
		runway = fmt.Sprintf("a %d-week runway", weeks)
	}
	phase := map[domain.CycleName]string{
		domain.CycleGreen: "foundation",
		domain.CycleAmber: "build",
		domain.CycleRed:   "peak",
	}[cycle]
	if votes == 2 {
		return fmt.Sprintf("%s training experience and %s both support a %s (%s) cycle.",
			titleCase(string(exp)), runway, phase, cycle)
	}
	return fmt.Sprintf("%s training experience and %s point to different phases; the more conservative %s (%s) cycle was chosen.",
		titleCase(string(exp)), runway, phase, cycle)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i > 0 && c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	return string(lower)
}
