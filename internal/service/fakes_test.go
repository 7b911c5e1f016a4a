package service

// In-memory repository fakes shared by the service tests. They implement the
// same conflict semantics the mongo layer does, so the at-most-once confirm
// behavior can be exercised without a database.

import (
	"context"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	r.users[user.ID] = &copied
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) SetOnboarded(_ context.Context, athleteID primitive.ObjectID, cycle domain.CycleName) error {
	u, ok := r.users[athleteID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Onboarded = true
	u.CurrentCycle = cycle
	return nil
}

func (r *fakeUserRepo) MarkCompleted(_ context.Context, athleteID primitive.ObjectID) error {
	u, ok := r.users[athleteID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Onboarded = true
	return nil
}

type fakeOnboardingRepo struct {
	records map[primitive.ObjectID]*domain.Onboarding
}

func newFakeOnboardingRepo() *fakeOnboardingRepo {
	return &fakeOnboardingRepo{records: make(map[primitive.ObjectID]*domain.Onboarding)}
}

func (r *fakeOnboardingRepo) Upsert(_ context.Context, onboarding *domain.Onboarding) error {
	if existing, ok := r.records[onboarding.AthleteID]; ok && existing.Status != domain.OnboardingPending {
		return repository.ErrConflict
	}
	if onboarding.ID.IsZero() {
		onboarding.ID = primitive.NewObjectID()
	}
	onboarding.Status = domain.OnboardingPending
	copied := *onboarding
	r.records[onboarding.AthleteID] = &copied
	return nil
}

func (r *fakeOnboardingRepo) GetPendingByAthleteID(_ context.Context, athleteID primitive.ObjectID) (*domain.Onboarding, error) {
	rec, ok := r.records[athleteID]
	if !ok || rec.Status != domain.OnboardingPending {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (r *fakeOnboardingRepo) GetLatestByAthleteID(_ context.Context, athleteID primitive.ObjectID) (*domain.Onboarding, error) {
	rec, ok := r.records[athleteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (r *fakeOnboardingRepo) Confirm(_ context.Context, athleteID primitive.ObjectID, selection domain.CycleSelection) (*domain.Onboarding, error) {
	rec, ok := r.records[athleteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if rec.Status != domain.OnboardingPending {
		return nil, repository.ErrConflict
	}
	now := time.Now()
	rec.Selection = &selection
	rec.Status = domain.OnboardingConfirmed
	rec.ConfirmedAt = &now
	return rec, nil
}

func (r *fakeOnboardingRepo) Complete(_ context.Context, athleteID primitive.ObjectID) error {
	rec, ok := r.records[athleteID]
	if !ok || rec.Status != domain.OnboardingConfirmed {
		return repository.ErrNotFound
	}
	rec.Status = domain.OnboardingCompleted
	return nil
}

type fakeRoadmapRepo struct {
	roadmaps map[primitive.ObjectID]*domain.Roadmap
	saves    int
}

func newFakeRoadmapRepo() *fakeRoadmapRepo {
	return &fakeRoadmapRepo{roadmaps: make(map[primitive.ObjectID]*domain.Roadmap)}
}

func (r *fakeRoadmapRepo) Save(_ context.Context, roadmap *domain.Roadmap) (primitive.ObjectID, error) {
	if roadmap.ID.IsZero() {
		roadmap.ID = primitive.NewObjectID()
	}
	r.roadmaps[roadmap.AthleteID] = roadmap
	r.saves++
	return roadmap.ID, nil
}

func (r *fakeRoadmapRepo) GetByAthleteID(_ context.Context, athleteID primitive.ObjectID) (*domain.Roadmap, error) {
	roadmap, ok := r.roadmaps[athleteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return roadmap, nil
}

func (r *fakeRoadmapRepo) Update(_ context.Context, roadmap *domain.Roadmap) error {
	if _, ok := r.roadmaps[roadmap.AthleteID]; !ok {
		return repository.ErrNotFound
	}
	r.roadmaps[roadmap.AthleteID] = roadmap
	return nil
}

func (r *fakeRoadmapRepo) ListActive(_ context.Context) ([]domain.Roadmap, error) {
	var out []domain.Roadmap
	for _, roadmap := range r.roadmaps {
		for _, c := range roadmap.Cycles {
			if !c.Completed {
				out = append(out, *roadmap)
				break
			}
		}
	}
	return out, nil
}

type fakeGoalTypeRepo struct {
	goalTypes []domain.GoalType
}

func (r *fakeGoalTypeRepo) Create(_ context.Context, goalType *domain.GoalType) (primitive.ObjectID, error) {
	if goalType.ID.IsZero() {
		goalType.ID = primitive.NewObjectID()
	}
	r.goalTypes = append(r.goalTypes, *goalType)
	return goalType.ID, nil
}

func (r *fakeGoalTypeRepo) List(_ context.Context, limit int64) ([]domain.GoalType, error) {
	if limit > 0 && int64(len(r.goalTypes)) > limit {
		return r.goalTypes[:limit], nil
	}
	return r.goalTypes, nil
}

func (r *fakeGoalTypeRepo) GetByCategory(_ context.Context, category string) (*domain.GoalType, error) {
	for i := range r.goalTypes {
		if r.goalTypes[i].Category == category {
			return &r.goalTypes[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeProgramRepo struct {
	programs map[primitive.ObjectID]*domain.Program
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{programs: make(map[primitive.ObjectID]*domain.Program)}
}

func (r *fakeProgramRepo) Create(_ context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.ID.IsZero() {
		program.ID = primitive.NewObjectID()
	}
	r.programs[program.ID] = program
	return program.ID, nil
}

func (r *fakeProgramRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Program, error) {
	program, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return program, nil
}

func (r *fakeProgramRepo) FindByCycleAndGoal(_ context.Context, cycle domain.CycleName, goal string) (*domain.Program, error) {
	var generic *domain.Program
	for _, program := range r.programs {
		if program.CycleName != cycle {
			continue
		}
		if program.Goal == goal {
			return program, nil
		}
		if program.Goal == "" {
			generic = program
		}
	}
	if generic != nil {
		return generic, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProgramRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Program, error) {
	var out []domain.Program
	for _, program := range r.programs {
		if program.CoachID == coachID {
			out = append(out, *program)
		}
	}
	return out, nil
}
