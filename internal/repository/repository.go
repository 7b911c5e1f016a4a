package repository

import (
	"context"

	"peakform/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// SetOnboarded flips the athlete's onboarded flag and current cycle.
	SetOnboarded(ctx context.Context, athleteID primitive.ObjectID, cycle domain.CycleName) error
	MarkCompleted(ctx context.Context, athleteID primitive.ObjectID) error
}

// OnboardingRepository stores onboarding attempt records.
type OnboardingRepository interface {
	// Upsert creates or replaces the athlete's pending attempt. Confirmed
	// attempts are never replaced by an upsert.
	Upsert(ctx context.Context, onboarding *domain.Onboarding) error
	GetPendingByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.Onboarding, error)
	GetLatestByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.Onboarding, error)
	// Confirm moves a pending attempt to confirmed with the given selection.
	// Returns ErrConflict if the attempt is no longer pending, which is how
	// the at-most-once confirm guarantee is enforced.
	Confirm(ctx context.Context, athleteID primitive.ObjectID, selection domain.CycleSelection) (*domain.Onboarding, error)
	Complete(ctx context.Context, athleteID primitive.ObjectID) error
}

// RoadmapRepository stores generated roadmaps, one active per athlete.
type RoadmapRepository interface {
	Save(ctx context.Context, roadmap *domain.Roadmap) (primitive.ObjectID, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.Roadmap, error)
	Update(ctx context.Context, roadmap *domain.Roadmap) error
	// ListActive returns roadmaps with at least one non-completed cycle,
	// for the nightly rollover job.
	ListActive(ctx context.Context) ([]domain.Roadmap, error)
}

// GoalTypeRepository stores the goal taxonomy.
type GoalTypeRepository interface {
	Create(ctx context.Context, goalType *domain.GoalType) (primitive.ObjectID, error)
	List(ctx context.Context, limit int64) ([]domain.GoalType, error)
	GetByCategory(ctx context.Context, category string) (*domain.GoalType, error)
}

// ProgramRepository stores coach-authored program templates.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	// FindByCycleAndGoal returns the best matching template for a cycle,
	// preferring a goal-specific program over a generic one.
	FindByCycleAndGoal(ctx context.Context, cycle domain.CycleName, goal string) (*domain.Program, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error)
}
