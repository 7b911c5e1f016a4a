package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scriptable service fakes. Each returns the scripted value or error.

type fakeReadinessService struct {
	rec *domain.ReadinessRecommendation
	err error
}

func (f *fakeReadinessService) Evaluate(_ context.Context, _ domain.OnboardingProfile) (*domain.ReadinessRecommendation, error) {
	return f.rec, f.err
}

func (f *fakeReadinessService) CurrentRecommendation(_ context.Context, _ primitive.ObjectID) (*domain.ReadinessRecommendation, error) {
	return f.rec, f.err
}

type fakeOnboardingService struct {
	onboarding *domain.Onboarding
	err        error
}

func (f *fakeOnboardingService) Create(_ context.Context, _ primitive.ObjectID, _ domain.OnboardingProfile) (*domain.Onboarding, error) {
	return f.onboarding, f.err
}

func (f *fakeOnboardingService) ConfirmTransition(_ context.Context, _ primitive.ObjectID, _ domain.CycleName, _ *primitive.ObjectID) (*domain.Onboarding, error) {
	return f.onboarding, f.err
}

func (f *fakeOnboardingService) ConfirmOnboarding(_ context.Context, _ primitive.ObjectID, _ domain.OnboardingProfile, _ domain.CycleName, _ *primitive.ObjectID) (*domain.Onboarding, error) {
	return f.onboarding, f.err
}

func (f *fakeOnboardingService) Complete(_ context.Context, _ primitive.ObjectID) error {
	return f.err
}

type fakeRoadmapService struct {
	roadmap *domain.Roadmap
	err     error
}

func (f *fakeRoadmapService) Generate(_ context.Context, _ primitive.ObjectID, _ domain.OnboardingProfile, _ domain.CycleSelection, _ *domain.ReadinessRecommendation) (*domain.Roadmap, error) {
	return f.roadmap, f.err
}

func (f *fakeRoadmapService) Get(_ context.Context, _ primitive.ObjectID) (*domain.Roadmap, error) {
	return f.roadmap, f.err
}

func (f *fakeRoadmapService) GenerateLegacy(_ context.Context, _ primitive.ObjectID, _, _ string, _ domain.CycleName) (*domain.Roadmap, error) {
	return f.roadmap, f.err
}

func (f *fakeRoadmapService) Rollover(_ context.Context, _ time.Time) (int, error) {
	return 0, f.err
}

// performAthlete invokes one handler method with an authenticated athlete
// context.
func performAthlete(t *testing.T, handler gin.HandlerFunc, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) {
		c.Set(ContextUserIDKey, primitive.NewObjectID().Hex())
		c.Set(ContextUserRoleKey, domain.RoleAthlete)
	}, handler)

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestEvaluateReadinessOK(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(
		&fakeReadinessService{rec: &domain.ReadinessRecommendation{RecommendedCycle: domain.CycleGreen, Confidence: 0.82}},
		&fakeOnboardingService{},
		&fakeRoadmapService{},
	)

	w := performAthlete(t, handler.EvaluateReadiness, http.MethodPost, "/athlete/readiness/evaluate", map[string]string{
		"trainingExperience": "BEGINNER",
		"primaryGoal":        "Strength",
		"eventDate":          "2026-12-01",
	})

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.NotNil(t, env.Data)
}

func TestEvaluateReadinessRejectsUnknownExperience(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(&fakeReadinessService{}, &fakeOnboardingService{}, &fakeRoadmapService{})

	w := performAthlete(t, handler.EvaluateReadiness, http.MethodPost, "/athlete/readiness/evaluate", map[string]string{
		"trainingExperience": "WIZARD",
		"primaryGoal":        "Strength",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmTransitionAlreadyOnboardedEnvelope(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(
		&fakeReadinessService{},
		&fakeOnboardingService{err: service.ErrAlreadyOnboarded},
		&fakeRoadmapService{},
	)

	w := performAthlete(t, handler.ConfirmTransition, http.MethodPost, "/athlete/cycle-transition/confirm", map[string]string{
		"cycleName": "Green",
	})

	// Domain failures ride inside a transport 200.
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusConflict, env.StatusCode)
	assert.Equal(t, CodeAlreadyOnboarded, env.ErrorCode)
	assert.NotEmpty(t, env.Message)
}

func TestConfirmTransitionWithoutPendingAttempt(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(
		&fakeReadinessService{},
		&fakeOnboardingService{err: service.ErrNoPendingOnboarding},
		&fakeRoadmapService{},
	)

	w := performAthlete(t, handler.ConfirmTransition, http.MethodPost, "/athlete/cycle-transition/confirm", map[string]string{
		"cycleName": "Green",
	})

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Empty(t, env.ErrorCode)
}

func TestConfirmTransitionRejectsMalformedProgramID(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(&fakeReadinessService{}, &fakeOnboardingService{}, &fakeRoadmapService{})

	w := performAthlete(t, handler.ConfirmTransition, http.MethodPost, "/athlete/cycle-transition/confirm", map[string]string{
		"cycleName": "Green",
		"programId": "not-a-hex-id",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRoadmapNotFoundEnvelope(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(
		&fakeReadinessService{},
		&fakeOnboardingService{},
		&fakeRoadmapService{err: service.ErrRoadmapNotFound},
	)

	w := performAthlete(t, handler.GetRoadmap, http.MethodGet, "/athlete/roadmap", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Equal(t, "No roadmap found. Please complete confirmation step.", env.Message)
}

func TestGetRoadmapSerializesTimelineShapes(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(
		&fakeReadinessService{},
		&fakeOnboardingService{},
		&fakeRoadmapService{roadmap: &domain.Roadmap{
			PrimaryGoal:  "Strength",
			TotalWeeks:   12,
			CurrentCycle: domain.CycleGreen,
			Timeline: map[string]map[string]domain.TimelineDays{
				"green": {"week1": {Days: []domain.DayExercise{{DayLabel: "Day 1"}}}},
				"red": {
					"week1": {Notes: []string{"Day 1: Rest"}},
					"week2": {Day: &domain.DayExercise{DayLabel: "Taper"}},
				},
			},
		}},
	)

	w := performAthlete(t, handler.GetRoadmap, http.MethodGet, "/athlete/roadmap", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Each variant serializes in its own wire shape.
	var body struct {
		Data struct {
			Timeline map[string]map[string]json.RawMessage `json:"timeline"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, byte('['), body.Data.Timeline["green"]["week1"][0])
	assert.Equal(t, byte('"'), body.Data.Timeline["red"]["week1"][1])
	assert.Equal(t, byte('{'), body.Data.Timeline["red"]["week2"][0])
}

func TestCreateOnboardingValidationError(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(&fakeReadinessService{}, &fakeOnboardingService{}, &fakeRoadmapService{})

	// Height missing.
	w := performAthlete(t, handler.CreateOnboarding, http.MethodPost, "/athlete/onboarding/create", map[string]interface{}{
		"weight":             78,
		"age":                29,
		"gender":             "male",
		"trainingExperience": "BEGINNER",
		"primaryGoal":        "Strength",
		"secondaryGoal":      "Mobility",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOnboardingUnknownGoal(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(
		&fakeReadinessService{},
		&fakeOnboardingService{err: service.ErrUnknownGoal},
		&fakeRoadmapService{},
	)

	w := performAthlete(t, handler.CreateOnboarding, http.MethodPost, "/athlete/onboarding/create", map[string]interface{}{
		"height":             180,
		"weight":             78,
		"age":                29,
		"gender":             "male",
		"trainingExperience": "BEGINNER",
		"primaryGoal":        "Yodeling",
		"secondaryGoal":      "Mobility",
	})

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusUnprocessableEntity, env.StatusCode)
}

func TestCompleteOnboardingOK(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(&fakeReadinessService{}, &fakeOnboardingService{}, &fakeRoadmapService{})

	w := performAthlete(t, handler.CompleteOnboarding, http.MethodPost, "/athlete/onboarding/complete", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, env.StatusCode)
}

func TestGenerateRoadmapLegacySnakeCasePayload(t *testing.T) {
	t.Parallel()

	handler := NewAthleteHandler(
		&fakeReadinessService{},
		&fakeOnboardingService{},
		&fakeRoadmapService{roadmap: &domain.Roadmap{TotalWeeks: 12}},
	)

	w := performAthlete(t, handler.GenerateRoadmapLegacy, http.MethodPost, "/athlete/roadmap/generate", map[string]string{
		"primary_goal":      "Strength",
		"recommended_cycle": "Amber",
	})

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, env.StatusCode)
}
