package wizard

import (
	"context"
	"net/http"
	"testing"

	"peakform/coaching-app/internal/api"
	"peakform/coaching-app/internal/client"
	"peakform/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI counts calls and lets tests script failures per method.
type fakeAPI struct {
	goalTypes []domain.GoalType

	evaluateCalls int
	createCalls   int
	confirmCalls  int
	completeCalls int
	roadmapCalls  int
	goalCalls     int

	lastConfirmCycle   domain.CycleName
	lastConfirmProgram string

	rec           *domain.ReadinessRecommendation
	createOmitRec bool
	createErr     error
	confirmErr    error
	roadmapErr    error

	// onConfirm runs inside ConfirmCycleTransition, before it returns.
	// Used to simulate a second click while the request is in flight.
	onConfirm func()
}

func (f *fakeAPI) EvaluateReadiness(_ context.Context, _ client.EvaluateInput) (*domain.ReadinessRecommendation, error) {
	f.evaluateCalls++
	return f.rec, nil
}

func (f *fakeAPI) CreateOnboarding(_ context.Context, profile domain.OnboardingProfile) (*domain.Onboarding, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	onboarding := &domain.Onboarding{
		Profile: profile,
		Status:  domain.OnboardingPending,
	}
	if !f.createOmitRec {
		onboarding.Recommendation = f.rec
	}
	return onboarding, nil
}

func (f *fakeAPI) GetGoalTypes(_ context.Context, _ int64) ([]domain.GoalType, error) {
	f.goalCalls++
	return f.goalTypes, nil
}

func (f *fakeAPI) ConfirmCycleTransition(_ context.Context, cycleName domain.CycleName, programID string) (*domain.Onboarding, error) {
	f.confirmCalls++
	f.lastConfirmCycle = cycleName
	f.lastConfirmProgram = programID
	if f.onConfirm != nil {
		f.onConfirm()
	}
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &domain.Onboarding{Status: domain.OnboardingConfirmed}, nil
}

func (f *fakeAPI) CompleteOnboarding(_ context.Context) error {
	f.completeCalls++
	return nil
}

func (f *fakeAPI) GetRoadmap(_ context.Context) (*domain.Roadmap, error) {
	f.roadmapCalls++
	if f.roadmapErr != nil {
		return nil, f.roadmapErr
	}
	return &domain.Roadmap{TotalWeeks: 12, CurrentCycle: domain.CycleGreen}, nil
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		goalTypes: []domain.GoalType{{Category: "Strength"}, {Category: "Mobility"}},
		rec: &domain.ReadinessRecommendation{
			RecommendedCycle: domain.CycleGreen,
			Confidence:       0.82,
			WeeksToEvent:     20,
		},
	}
}

func testProfile() domain.OnboardingProfile {
	return domain.OnboardingProfile{
		Height:             180,
		Weight:             78,
		Age:                29,
		Gender:             "male",
		TrainingExperience: domain.ExperienceBeginner,
		PrimaryGoal:        "Strength",
		SecondaryGoal:      "Mobility",
	}
}

// advanceToConfirmation walks a fresh controller to step three by accepting
// the recommendation.
func advanceToConfirmation(t *testing.T, ctrl *Controller) {
	t.Helper()
	_, err := ctrl.SubmitProfile(context.Background(), testProfile())
	require.NoError(t, err)
	require.NoError(t, ctrl.AcceptRecommendation())
	require.Equal(t, StepConfirmation, ctrl.CurrentStep())
}

func TestSubmitProfileAdvancesWithRecommendation(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)

	rec, err := ctrl.SubmitProfile(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, StepRecommendation, ctrl.CurrentStep())
	assert.Equal(t, domain.CycleGreen, rec.RecommendedCycle)
	assert.Equal(t, 1, fake.createCalls)
	assert.Zero(t, fake.evaluateCalls, "the create response already carries the recommendation")
	require.NotNil(t, ctrl.Profile())
	assert.Equal(t, "Strength", ctrl.Profile().PrimaryGoal)
}

func TestSubmitProfileFallsBackToEvaluate(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	fake.createOmitRec = true
	ctrl := NewController(fake)

	rec, err := ctrl.SubmitProfile(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, 1, fake.createCalls)
	assert.Equal(t, 1, fake.evaluateCalls)
	require.NotNil(t, rec)
	assert.Equal(t, domain.CycleGreen, rec.RecommendedCycle)
	assert.Equal(t, StepRecommendation, ctrl.CurrentStep())
}

func TestSubmitProfileValidationFailsLocally(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)

	profile := testProfile()
	profile.PrimaryGoal = "Yodeling"
	_, err := ctrl.SubmitProfile(context.Background(), profile)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "primaryGoal", fieldErr.Field)
	assert.Equal(t, StepProfile, ctrl.CurrentStep(), "validation failure must not advance")
	assert.Zero(t, fake.createCalls, "validation failure must not reach the network")
}

func TestGoalTypesFetchedOnce(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)

	for i := 0; i < 3; i++ {
		goals, err := ctrl.GoalTypes(context.Background())
		require.NoError(t, err)
		assert.Len(t, goals, 2)
	}
	assert.Equal(t, 1, fake.goalCalls)
}

func TestAcceptRecommendationCarriesProgram(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)

	_, err := ctrl.SubmitProfile(context.Background(), testProfile())
	require.NoError(t, err)
	require.NoError(t, ctrl.AcceptRecommendation())

	selection := ctrl.Selection()
	require.NotNil(t, selection)
	assert.Equal(t, domain.CycleGreen, selection.CycleName)
	assert.True(t, selection.Confirmed)
}

func TestOverrideCycleIsRecordedAsOverride(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)

	_, err := ctrl.SubmitProfile(context.Background(), testProfile())
	require.NoError(t, err)
	require.NoError(t, ctrl.OverrideCycle(domain.CycleAmber))

	selection := ctrl.Selection()
	require.NotNil(t, selection)
	assert.Equal(t, domain.CycleAmber, selection.CycleName)
	assert.False(t, selection.Confirmed)
	assert.Nil(t, selection.ProgramID, "overrides carry no program; the server picks one")

	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()))
	assert.Equal(t, domain.CycleAmber, fake.lastConfirmCycle,
		"the confirm request must carry the overridden cycle, not the recommended one")
}

func TestOverrideCycleRejectsUnknownName(t *testing.T) {
	t.Parallel()

	ctrl := NewController(newFakeAPI())
	_, err := ctrl.SubmitProfile(context.Background(), testProfile())
	require.NoError(t, err)

	err = ctrl.OverrideCycle(domain.CycleName("Purple"))
	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, StepRecommendation, ctrl.CurrentStep())
}

func TestConfirmAndAdvanceHappyPath(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)
	advanceToConfirmation(t, ctrl)

	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()))

	assert.Equal(t, StepRoadmap, ctrl.CurrentStep())
	assert.Equal(t, 1, fake.confirmCalls)
	assert.NotNil(t, ctrl.Profile(), "earlier step data is retained for back-navigation")
	assert.NotNil(t, ctrl.Recommendation())
}

func TestConfirmAndAdvanceFiresAtMostOnceWhileInFlight(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)
	advanceToConfirmation(t, ctrl)

	// Second click arrives while the first request is still in flight.
	var reentrantErr error
	fake.onConfirm = func() {
		reentrantErr = ctrl.ConfirmAndAdvance(context.Background())
	}

	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()))

	assert.ErrorIs(t, reentrantErr, ErrConfirmInFlight)
	assert.Equal(t, 1, fake.confirmCalls)
}

func TestConfirmAndAdvanceAfterSuccessIsWrongStep(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)
	advanceToConfirmation(t, ctrl)

	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()))
	err := ctrl.ConfirmAndAdvance(context.Background())

	assert.ErrorIs(t, err, ErrWrongStep)
	assert.Equal(t, 1, fake.confirmCalls)
}

func TestConfirmAndAdvanceAlreadyOnboardedGoesToDashboard(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	fake.confirmErr = &client.APIError{
		StatusCode: http.StatusConflict,
		Message:    "Athlete already onboarded",
		ErrorCode:  api.CodeAlreadyOnboarded,
	}
	ctrl := NewController(fake)
	advanceToConfirmation(t, ctrl)

	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()),
		"an already-confirmed cycle is resolution, not failure")
	assert.True(t, ctrl.Done())
}

func TestConfirmAndAdvanceFailureReenablesControl(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	fake.confirmErr = &client.APIError{StatusCode: http.StatusBadGateway, Message: "upstream unavailable"}
	ctrl := NewController(fake)
	advanceToConfirmation(t, ctrl)
	ctrl.OpenOverridePicker()

	err := ctrl.ConfirmAndAdvance(context.Background())
	require.Error(t, err)
	assert.Equal(t, StepConfirmation, ctrl.CurrentStep())
	assert.False(t, ctrl.OverridePickerOpen(), "the override dialog never outlives a confirm resolution")

	// The control is usable again: clearing the scripted failure lets a
	// retry succeed.
	fake.confirmErr = nil
	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()))
	assert.Equal(t, StepRoadmap, ctrl.CurrentStep())
}

func TestConfirmAndAdvanceClosesOverridePickerOnSuccess(t *testing.T) {
	t.Parallel()

	ctrl := NewController(newFakeAPI())
	advanceToConfirmation(t, ctrl)
	ctrl.OpenOverridePicker()

	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()))
	assert.False(t, ctrl.OverridePickerOpen())
}

func TestFetchRoadmapOnce(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)
	advanceToConfirmation(t, ctrl)
	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()))

	for i := 0; i < 3; i++ {
		roadmap, err := ctrl.FetchRoadmap(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 12, roadmap.TotalWeeks)
	}
	assert.Equal(t, 1, fake.roadmapCalls)
}

func TestCompleteOnboardingNavigatesEvenOnError(t *testing.T) {
	t.Parallel()

	fake := newFakeAPI()
	ctrl := NewController(fake)
	advanceToConfirmation(t, ctrl)
	require.NoError(t, ctrl.ConfirmAndAdvance(context.Background()))

	fake.confirmErr = nil
	err := ctrl.CompleteOnboarding(context.Background())
	require.NoError(t, err)
	assert.True(t, ctrl.Done())
	assert.Equal(t, 1, fake.completeCalls)
}

func TestGoToStepBackwardOnly(t *testing.T) {
	t.Parallel()

	ctrl := NewController(newFakeAPI())
	_, err := ctrl.SubmitProfile(context.Background(), testProfile())
	require.NoError(t, err)

	ctrl.GoToStep(StepRoadmap)
	assert.Equal(t, StepRecommendation, ctrl.CurrentStep(), "forward jumps are no-ops")

	ctrl.GoToStep(StepProfile)
	assert.Equal(t, StepProfile, ctrl.CurrentStep())
	assert.NotNil(t, ctrl.Recommendation(), "going back must not discard step data")
}

func TestStepGuards(t *testing.T) {
	t.Parallel()

	ctrl := NewController(newFakeAPI())

	assert.ErrorIs(t, ctrl.AcceptRecommendation(), ErrWrongStep)
	assert.ErrorIs(t, ctrl.ConfirmAndAdvance(context.Background()), ErrWrongStep)
	_, err := ctrl.FetchRoadmap(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.ErrorIs(t, ctrl.CompleteOnboarding(context.Background()), ErrWrongStep)
}
