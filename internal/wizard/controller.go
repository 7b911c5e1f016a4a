// Package wizard implements the client-side onboarding flow: a four-step
// controller (profile, recommendation, confirmation, roadmap) that owns the
// step index and the data produced by completed steps. Steps one and two are
// pure evaluation and repeatable; the confirmation step performs the single
// persisting write.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"peakform/coaching-app/internal/api"
	"peakform/coaching-app/internal/client"
	"peakform/coaching-app/internal/domain"
)

// Step identifies a wizard screen. Forward progress is strictly sequential;
// backward jumps are allowed via GoToStep.
type Step int

const (
	StepProfile Step = iota + 1
	StepRecommendation
	StepConfirmation
	StepRoadmap
)

// --- Error Definitions ---
var (
	ErrWrongStep       = errors.New("operation not valid for the current step")
	ErrConfirmInFlight = errors.New("confirmation already in progress")
	ErrNothingToSubmit = errors.New("profile and cycle selection are required before confirming")
)

// FieldError is a step-one validation failure tied to a single input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// API is the slice of the HTTP client the wizard needs.
type API interface {
	EvaluateReadiness(ctx context.Context, input client.EvaluateInput) (*domain.ReadinessRecommendation, error)
	CreateOnboarding(ctx context.Context, profile domain.OnboardingProfile) (*domain.Onboarding, error)
	GetGoalTypes(ctx context.Context, limit int64) ([]domain.GoalType, error)
	ConfirmCycleTransition(ctx context.Context, cycleName domain.CycleName, programID string) (*domain.Onboarding, error)
	CompleteOnboarding(ctx context.Context) error
	GetRoadmap(ctx context.Context) (*domain.Roadmap, error)
}

// Controller owns the wizard state. It is driven from a single event loop;
// it is not safe for concurrent use, and does not need to be: each step's
// submit handler is the sole writer for the duration of its step. The one
// guard it does enforce is the in-flight flag around the confirm call, which
// makes rapid repeated submissions issue at most one request.
type Controller struct {
	api API

	step Step
	done bool // reached the dashboard

	profile        *domain.OnboardingProfile
	recommendation *domain.ReadinessRecommendation
	selection      *domain.CycleSelection

	goalTypes    []domain.GoalType
	goalsFetched bool

	confirming   bool
	overrideOpen bool

	roadmap        *domain.Roadmap
	roadmapFetched bool
}

// NewController creates a controller positioned on the profile step.
func NewController(api API) *Controller {
	return &Controller{api: api, step: StepProfile}
}

// CurrentStep returns the active step.
func (c *Controller) CurrentStep() Step { return c.step }

// Done reports whether the wizard has reached the dashboard.
func (c *Controller) Done() bool { return c.done }

// Profile returns the stored profile, nil before step one completes.
func (c *Controller) Profile() *domain.OnboardingProfile { return c.profile }

// Recommendation returns the stored recommendation, nil before step one
// completes. It is discarded only when the wizard restarts.
func (c *Controller) Recommendation() *domain.ReadinessRecommendation { return c.recommendation }

// Selection returns the stored cycle selection, nil before step two
// completes.
func (c *Controller) Selection() *domain.CycleSelection { return c.selection }

// GoalTypes fetches the goal taxonomy once and caches it; repeat calls reuse
// the cache so effect re-invocation cannot duplicate the request.
func (c *Controller) GoalTypes(ctx context.Context) ([]domain.GoalType, error) {
	if c.goalsFetched {
		return c.goalTypes, nil
	}
	goalTypes, err := c.api.GetGoalTypes(ctx, 100)
	if err != nil {
		return nil, err
	}
	c.goalTypes = goalTypes
	c.goalsFetched = true
	return goalTypes, nil
}

// ValidateProfile checks the required fields and that both goals come from
// the server-provided goal-type list. The first failing field is reported.
func (c *Controller) ValidateProfile(ctx context.Context, profile domain.OnboardingProfile) error {
	switch {
	case profile.Height <= 0:
		return &FieldError{Field: "height", Message: "Height is required"}
	case profile.Weight <= 0:
		return &FieldError{Field: "weight", Message: "Weight is required"}
	case profile.Age <= 0:
		return &FieldError{Field: "age", Message: "Age is required"}
	case profile.Gender == "":
		return &FieldError{Field: "gender", Message: "Gender is required"}
	case profile.TrainingExperience == "":
		return &FieldError{Field: "trainingExperience", Message: "Training experience is required"}
	case profile.PrimaryGoal == "":
		return &FieldError{Field: "primaryGoal", Message: "Primary goal is required"}
	case profile.SecondaryGoal == "":
		return &FieldError{Field: "secondaryGoal", Message: "Secondary goal is required"}
	}

	goalTypes, err := c.GoalTypes(ctx)
	if err != nil {
		return err
	}
	if !goalKnown(goalTypes, profile.PrimaryGoal) {
		return &FieldError{Field: "primaryGoal", Message: "Primary goal must be selected from the list"}
	}
	if !goalKnown(goalTypes, profile.SecondaryGoal) {
		return &FieldError{Field: "secondaryGoal", Message: "Secondary goal must be selected from the list"}
	}
	return nil
}

func goalKnown(goalTypes []domain.GoalType, goal string) bool {
	for _, gt := range goalTypes {
		if gt.Category == goal {
			return true
		}
	}
	return false
}

// SubmitProfile is step one's submit handler: validate, record the draft
// attempt, and advance carrying both the profile and the recommendation
// computed for it. The create call is the sole network request; resubmitting
// later just replaces the draft server-side. A validation or network failure
// leaves the wizard on step one.
func (c *Controller) SubmitProfile(ctx context.Context, profile domain.OnboardingProfile) (*domain.ReadinessRecommendation, error) {
	if c.step != StepProfile {
		return nil, ErrWrongStep
	}
	if err := c.ValidateProfile(ctx, profile); err != nil {
		return nil, err
	}

	onboarding, err := c.api.CreateOnboarding(ctx, profile)
	if err != nil {
		return nil, err
	}
	rec := onboarding.Recommendation
	if rec == nil {
		// Older servers return the attempt without the embedded
		// recommendation; fall back to the preview endpoint.
		rec, err = c.api.EvaluateReadiness(ctx, client.EvaluateInput{
			TrainingExperience: profile.TrainingExperience,
			PrimaryGoal:        profile.PrimaryGoal,
			EventDate:          profile.EventDate,
		})
		if err != nil {
			return nil, err
		}
	}

	c.AdvanceFromProfile(profile, rec)
	return rec, nil
}

// AdvanceFromProfile stores the submitted profile and its recommendation and
// moves to step two. No network call happens here; the recommendation was
// already fetched by the submit handler.
func (c *Controller) AdvanceFromProfile(profile domain.OnboardingProfile, rec *domain.ReadinessRecommendation) {
	c.profile = &profile
	c.recommendation = rec
	c.step = StepRecommendation
}

// AcceptRecommendation stores the recommended cycle as the selection and
// moves to the confirmation step.
func (c *Controller) AcceptRecommendation() error {
	if c.step != StepRecommendation || c.recommendation == nil {
		return ErrWrongStep
	}
	selection := domain.CycleSelection{
		CycleName: c.recommendation.RecommendedCycle,
		Confirmed: true,
	}
	if c.recommendation.RecommendedProgramID != nil {
		selection.ProgramID = c.recommendation.RecommendedProgramID
	}
	return c.AdvanceFromRecommendation(selection)
}

// OverrideCycle stores a manual override, constrained to the enumerated
// cycle set, and moves to the confirmation step. No program is carried for
// an override; the server picks one for the chosen cycle.
func (c *Controller) OverrideCycle(cycleName domain.CycleName) error {
	if !cycleName.IsValid() {
		return &FieldError{Field: "cycleName", Message: "Cycle must be one of the listed options"}
	}
	return c.AdvanceFromRecommendation(domain.CycleSelection{
		CycleName: cycleName,
		Confirmed: false,
	})
}

// AdvanceFromRecommendation stores the cycle choice and moves to step three.
// No network call.
func (c *Controller) AdvanceFromRecommendation(selection domain.CycleSelection) error {
	if c.step != StepRecommendation {
		return ErrWrongStep
	}
	c.selection = &selection
	c.step = StepConfirmation
	return nil
}

// OpenOverridePicker marks the override dialog open on the confirmation
// step. ConfirmAndAdvance closes it on every resolution path so a dialog is
// never left stranded after the step has logically ended.
func (c *Controller) OpenOverridePicker() { c.overrideOpen = true }

// CloseOverridePicker closes the override dialog.
func (c *Controller) CloseOverridePicker() { c.overrideOpen = false }

// OverridePickerOpen reports whether the override dialog is showing.
func (c *Controller) OverridePickerOpen() bool { return c.overrideOpen }

// ConfirmAndAdvance issues the confirm-transition call with the stored
// profile and selection. It fires at most once at a time: calls made while a
// request is in flight fail fast without touching the network. On success the
// wizard moves to step four with all data retained for back-navigation. The
// AlreadyOnboarded domain error is not a failure: the athlete has a confirmed
// cycle from a previous attempt, so the wizard goes straight to the
// dashboard. Any other error keeps the wizard on step three with the
// triggering control re-enabled.
func (c *Controller) ConfirmAndAdvance(ctx context.Context) error {
	if c.step != StepConfirmation {
		return ErrWrongStep
	}
	if c.profile == nil || c.selection == nil {
		return ErrNothingToSubmit
	}
	if c.confirming {
		return ErrConfirmInFlight
	}

	c.confirming = true
	defer func() {
		c.confirming = false
		c.overrideOpen = false
	}()

	programID := ""
	if c.selection.ProgramID != nil {
		programID = c.selection.ProgramID.Hex()
	}

	_, err := c.api.ConfirmCycleTransition(ctx, c.selection.CycleName, programID)
	if err != nil {
		if client.HasErrorCode(err, api.CodeAlreadyOnboarded) {
			c.done = true
			return nil
		}
		return err
	}

	c.step = StepRoadmap
	return nil
}

// FetchRoadmap loads the roadmap for step four. The fetched flag guards
// against duplicate calls from re-renders; Refresh by restarting the wizard.
func (c *Controller) FetchRoadmap(ctx context.Context) (*domain.Roadmap, error) {
	if c.step != StepRoadmap {
		return nil, ErrWrongStep
	}
	if c.roadmapFetched {
		return c.roadmap, nil
	}
	roadmap, err := c.api.GetRoadmap(ctx)
	if err != nil {
		return nil, err
	}
	c.roadmap = roadmap
	c.roadmapFetched = true
	return roadmap, nil
}

// CompleteOnboarding navigates to the dashboard, telling the server so a
// later session's dashboard fetch reports isOnboarded true. Navigation
// happens even when the completion call fails; the error is surfaced for
// display only.
func (c *Controller) CompleteOnboarding(ctx context.Context) error {
	if c.step != StepRoadmap {
		return ErrWrongStep
	}
	err := c.api.CompleteOnboarding(ctx)
	c.done = true
	return err
}

// GoToStep jumps backward to a previously completed step. Forward skips are
// rejected silently, matching a clickable-but-guarded stepper: the call is a
// no-op when n exceeds the current step.
func (c *Controller) GoToStep(n Step) {
	if n < StepProfile || n > c.step {
		return
	}
	c.step = n
}
