package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAlreadyOnboarded    = errors.New("athlete has already confirmed a cycle transition")
	ErrNoPendingOnboarding = errors.New("no pending onboarding attempt; submit a profile first")
	ErrInvalidCycleName    = errors.New("cycle name is not in the allowed set")
	ErrUnknownGoal         = errors.New("goal is not a known goal type")
	ErrProfileIncomplete   = errors.New("profile is missing required fields")
)

// WelcomeNotifier sends the post-onboarding welcome message. Implemented by
// the notify package; nil disables sending.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, email, name string, cycle domain.CycleName) error
}

// --- Service Interface ---

// OnboardingService owns the server side of the onboarding flow. Create is
// repeatable (defer-save); ConfirmTransition is the single persisting write
// and succeeds at most once per attempt.
type OnboardingService interface {
	// Create records or replaces the athlete's pending attempt from a full
	// profile and returns the freshly evaluated recommendation.
	Create(ctx context.Context, athleteID primitive.ObjectID, profile domain.OnboardingProfile) (*domain.Onboarding, error)

	// ConfirmTransition persists the cycle choice, generates the roadmap
	// and sets the athlete's cycle. A repeat confirm fails with
	// ErrAlreadyOnboarded.
	ConfirmTransition(ctx context.Context, athleteID primitive.ObjectID, cycleName domain.CycleName, programID *primitive.ObjectID) (*domain.Onboarding, error)

	// ConfirmOnboarding is the defer-save variant: profile and selection in
	// one call, same single-use semantics as ConfirmTransition.
	ConfirmOnboarding(ctx context.Context, athleteID primitive.ObjectID, profile domain.OnboardingProfile, cycleName domain.CycleName, programID *primitive.ObjectID) (*domain.Onboarding, error)

	// Complete marks the athlete onboarded so subsequent dashboard fetches
	// report isOnboarded true.
	Complete(ctx context.Context, athleteID primitive.ObjectID) error
}

// --- Service Implementation ---

type onboardingService struct {
	onboardingRepo repository.OnboardingRepository
	userRepo       repository.UserRepository
	goalTypeRepo   repository.GoalTypeRepository
	readiness      ReadinessService
	roadmaps       RoadmapService
	notifier       WelcomeNotifier
}

// NewOnboardingService creates a new instance of onboardingService.
func NewOnboardingService(
	onboardingRepo repository.OnboardingRepository,
	userRepo repository.UserRepository,
	goalTypeRepo repository.GoalTypeRepository,
	readiness ReadinessService,
	roadmaps RoadmapService,
	notifier WelcomeNotifier,
) OnboardingService {
	return &onboardingService{
		onboardingRepo: onboardingRepo,
		userRepo:       userRepo,
		goalTypeRepo:   goalTypeRepo,
		readiness:      readiness,
		roadmaps:       roadmaps,
		notifier:       notifier,
	}
}

// validateProfile checks required fields and that both goals exist in the
// goal taxonomy.
func (s *onboardingService) validateProfile(ctx context.Context, profile domain.OnboardingProfile) error {
	if profile.Height <= 0 || profile.Weight <= 0 || profile.Age <= 0 ||
		profile.Gender == "" || profile.TrainingExperience == "" ||
		profile.PrimaryGoal == "" || profile.SecondaryGoal == "" {
		return ErrProfileIncomplete
	}
	for _, goal := range []string{profile.PrimaryGoal, profile.SecondaryGoal} {
		if _, err := s.goalTypeRepo.GetByCategory(ctx, goal); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %q", ErrUnknownGoal, goal)
			}
			return err
		}
	}
	return nil
}

// Create evaluates the profile and upserts the pending attempt. Calling it
// again before confirm simply replaces the draft.
func (s *onboardingService) Create(ctx context.Context, athleteID primitive.ObjectID, profile domain.OnboardingProfile) (*domain.Onboarding, error) {
	if err := s.validateProfile(ctx, profile); err != nil {
		return nil, err
	}

	rec, err := s.readiness.Evaluate(ctx, profile)
	if err != nil {
		return nil, err
	}

	onboarding := &domain.Onboarding{
		AthleteID:      athleteID,
		AttemptID:      uuid.NewString(),
		Profile:        profile,
		Recommendation: rec,
		Status:         domain.OnboardingPending,
	}
	if err := s.onboardingRepo.Upsert(ctx, onboarding); err != nil {
		return nil, err
	}
	return onboarding, nil
}

// ConfirmTransition performs the single persisting write of the wizard.
func (s *onboardingService) ConfirmTransition(ctx context.Context, athleteID primitive.ObjectID, cycleName domain.CycleName, programID *primitive.ObjectID) (*domain.Onboarding, error) {
	if !cycleName.IsValid() {
		return nil, ErrInvalidCycleName
	}

	// The confirmed flag records whether the athlete accepted the
	// recommendation or overrode it.
	confirmed := false
	if pending, err := s.onboardingRepo.GetPendingByAthleteID(ctx, athleteID); err == nil &&
		pending.Recommendation != nil && pending.Recommendation.RecommendedCycle == cycleName {
		confirmed = true
	}

	selection := domain.CycleSelection{
		CycleName: cycleName,
		Confirmed: confirmed,
		ProgramID: programID,
	}

	onboarding, err := s.onboardingRepo.Confirm(ctx, athleteID, selection)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrAlreadyOnboarded
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNoPendingOnboarding
		}
		return nil, err
	}

	if _, err := s.roadmaps.Generate(ctx, athleteID, onboarding.Profile, selection, onboarding.Recommendation); err != nil {
		return nil, err
	}

	if err := s.userRepo.SetOnboarded(ctx, athleteID, cycleName); err != nil {
		return nil, err
	}

	return onboarding, nil
}

// ConfirmOnboarding stores the profile and confirms in one round trip.
func (s *onboardingService) ConfirmOnboarding(ctx context.Context, athleteID primitive.ObjectID, profile domain.OnboardingProfile, cycleName domain.CycleName, programID *primitive.ObjectID) (*domain.Onboarding, error) {
	if _, err := s.Create(ctx, athleteID, profile); err != nil {
		return nil, err
	}
	return s.ConfirmTransition(ctx, athleteID, cycleName, programID)
}

// Complete marks the attempt and the athlete as done and sends the welcome
// email. Email delivery is best-effort; completion never fails on it.
func (s *onboardingService) Complete(ctx context.Context, athleteID primitive.ObjectID) error {
	if err := s.onboardingRepo.Complete(ctx, athleteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoPendingOnboarding
		}
		return err
	}
	if err := s.userRepo.MarkCompleted(ctx, athleteID); err != nil {
		return err
	}

	if s.notifier != nil {
		user, err := s.userRepo.GetByID(ctx, athleteID)
		if err == nil {
			if err := s.notifier.SendWelcome(ctx, user.Email, user.Name, user.CurrentCycle); err != nil {
				log.Printf("WARN: welcome email for %s failed: %v", user.Email, err)
			}
		}
	}
	return nil
}
