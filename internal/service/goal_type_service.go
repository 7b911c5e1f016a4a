package service

import (
	"context"
	"errors"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrGoalTypeExists = errors.New("goal type with this category and subcategory already exists")
)

// The list endpoint caps unbounded requests at this many rows.
const maxGoalTypeRows = 200

// --- Service Interface ---

// GoalTypeService manages the admin-owned goal taxonomy athletes choose
// their primary and secondary goals from.
type GoalTypeService interface {
	List(ctx context.Context, limit int64) ([]domain.GoalType, error)
	Create(ctx context.Context, category, subcategory string) (*domain.GoalType, error)
	// Seed inserts the default taxonomy if the collection is empty.
	Seed(ctx context.Context) error
}

// --- Service Implementation ---

type goalTypeService struct {
	goalTypeRepo repository.GoalTypeRepository
}

// NewGoalTypeService creates a new instance of goalTypeService.
func NewGoalTypeService(goalTypeRepo repository.GoalTypeRepository) GoalTypeService {
	return &goalTypeService{goalTypeRepo: goalTypeRepo}
}

// List returns goal types up to limit (capped).
func (s *goalTypeService) List(ctx context.Context, limit int64) ([]domain.GoalType, error) {
	if limit <= 0 || limit > maxGoalTypeRows {
		limit = maxGoalTypeRows
	}
	return s.goalTypeRepo.List(ctx, limit)
}

// Create adds a taxonomy entry.
func (s *goalTypeService) Create(ctx context.Context, category, subcategory string) (*domain.GoalType, error) {
	if category == "" {
		return nil, errors.New("category cannot be empty")
	}
	goalType := &domain.GoalType{
		Category:    category,
		Subcategory: subcategory,
	}
	id, err := s.goalTypeRepo.Create(ctx, goalType)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrGoalTypeExists
		}
		return nil, err
	}
	goalType.ID = id
	return goalType, nil
}

// Seed inserts the default taxonomy on first boot.
func (s *goalTypeService) Seed(ctx context.Context) error {
	existing, err := s.goalTypeRepo.List(ctx, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []domain.GoalType{
		{Category: "Strength", Subcategory: "Powerlifting"},
		{Category: "Hypertrophy", Subcategory: "Physique"},
		{Category: "Endurance", Subcategory: "Running"},
		{Category: "Mobility", Subcategory: "General"},
		{Category: "Weight Loss", Subcategory: "General"},
	}
	for i := range defaults {
		if _, err := s.goalTypeRepo.Create(ctx, &defaults[i]); err != nil &&
			!errors.Is(err, repository.ErrConflict) {
			return err
		}
	}
	return nil
}
