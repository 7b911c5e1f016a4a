package api

import (
	"errors"
	"fmt"
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AthleteHandler serves the athlete-facing onboarding, readiness and roadmap
// endpoints.
type AthleteHandler struct {
	readinessService  service.ReadinessService
	onboardingService service.OnboardingService
	roadmapService    service.RoadmapService
}

// NewAthleteHandler creates a new AthleteHandler.
func NewAthleteHandler(
	readinessService service.ReadinessService,
	onboardingService service.OnboardingService,
	roadmapService service.RoadmapService,
) *AthleteHandler {
	return &AthleteHandler{
		readinessService:  readinessService,
		onboardingService: onboardingService,
		roadmapService:    roadmapService,
	}
}

// --- Request Structs ---

// EvaluateRequest is the profile subset the preview evaluation needs. The
// full profile arrives later, at onboarding create.
type EvaluateRequest struct {
	TrainingExperience domain.TrainingExperience `json:"trainingExperience" binding:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	PrimaryGoal        string                    `json:"primaryGoal" binding:"required"`
	EventDate          string                    `json:"eventDate,omitempty"`
}

type CreateOnboardingRequest struct {
	Height             float64                   `json:"height" binding:"required,gt=0"`
	Weight             float64                   `json:"weight" binding:"required,gt=0"`
	Age                int                       `json:"age" binding:"required,gt=0"`
	Gender             string                    `json:"gender" binding:"required"`
	TrainingExperience domain.TrainingExperience `json:"trainingExperience" binding:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	PrimaryGoal        string                    `json:"primaryGoal" binding:"required"`
	SecondaryGoal      string                    `json:"secondaryGoal" binding:"required"`
	Equipment          []string                  `json:"equipment,omitempty"`
	EventDate          string                    `json:"eventDate,omitempty"`
	Occupation         string                    `json:"occupation,omitempty"`
}

func (r CreateOnboardingRequest) toProfile() domain.OnboardingProfile {
	return domain.OnboardingProfile{
		Height:             r.Height,
		Weight:             r.Weight,
		Age:                r.Age,
		Gender:             r.Gender,
		TrainingExperience: r.TrainingExperience,
		PrimaryGoal:        r.PrimaryGoal,
		SecondaryGoal:      r.SecondaryGoal,
		Equipment:          r.Equipment,
		EventDate:          r.EventDate,
		Occupation:         r.Occupation,
	}
}

type ConfirmTransitionRequest struct {
	CycleName domain.CycleName `json:"cycleName" binding:"required"`
	ProgramID string           `json:"programId,omitempty"`
}

// ConfirmOnboardingRequest is the defer-save payload: full profile plus the
// cycle selection in one call.
type ConfirmOnboardingRequest struct {
	CreateOnboardingRequest
	CycleName domain.CycleName `json:"cycleName" binding:"required"`
	ProgramID string           `json:"programId,omitempty"`
}

// LegacyGenerateRequest is the previous generator's payload shape.
type LegacyGenerateRequest struct {
	PrimaryGoal string `json:"primary_goal" binding:"required"`
	EventDate   string `json:"event_date,omitempty"`
	CycleName   string `json:"recommended_cycle" binding:"required"`
}

// --- Handler Methods ---

// EvaluateReadiness runs the preview evaluation. Repeatable; persists
// nothing.
func (h *AthleteHandler) EvaluateReadiness(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	rec, err := h.readinessService.Evaluate(c.Request.Context(), domain.OnboardingProfile{
		TrainingExperience: req.TrainingExperience,
		PrimaryGoal:        req.PrimaryGoal,
		EventDate:          req.EventDate,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidProfile) {
			respondAppError(c, http.StatusUnprocessableEntity, err.Error(), "")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to evaluate readiness")
		return
	}

	respondOK(c, rec)
}

// GetRecommendation returns the recommendation attached to the athlete's
// pending attempt.
func (h *AthleteHandler) GetRecommendation(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	rec, err := h.readinessService.CurrentRecommendation(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrNoRecommendation) {
			respondAppError(c, http.StatusNotFound, err.Error(), "")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load recommendation")
		return
	}

	respondOK(c, rec)
}

// CreateOnboarding records the pending attempt from a full profile.
func (h *AthleteHandler) CreateOnboarding(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	onboarding, err := h.onboardingService.Create(c.Request.Context(), athleteID, req.toProfile())
	if err != nil {
		h.respondOnboardingError(c, err)
		return
	}

	respondOK(c, onboarding)
}

// ConfirmTransition is the persisting confirm of the wizard.
func (h *AthleteHandler) ConfirmTransition(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ConfirmTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	programID, err := parseOptionalObjectID(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "programId is not a valid ID")
		return
	}

	onboarding, err := h.onboardingService.ConfirmTransition(c.Request.Context(), athleteID, req.CycleName, programID)
	if err != nil {
		h.respondOnboardingError(c, err)
		return
	}

	respondOK(c, onboarding)
}

// ConfirmOnboarding is the defer-save variant.
func (h *AthleteHandler) ConfirmOnboarding(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ConfirmOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	programID, err := parseOptionalObjectID(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "programId is not a valid ID")
		return
	}

	onboarding, err := h.onboardingService.ConfirmOnboarding(c.Request.Context(), athleteID, req.toProfile(), req.CycleName, programID)
	if err != nil {
		h.respondOnboardingError(c, err)
		return
	}

	respondOK(c, onboarding)
}

// CompleteOnboarding marks the athlete onboarded.
func (h *AthleteHandler) CompleteOnboarding(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.onboardingService.Complete(c.Request.Context(), athleteID); err != nil {
		h.respondOnboardingError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{StatusCode: http.StatusOK})
}

// GetRoadmap returns the athlete's current roadmap.
func (h *AthleteHandler) GetRoadmap(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	roadmap, err := h.roadmapService.Get(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrRoadmapNotFound) {
			respondAppError(c, http.StatusNotFound, "No roadmap found. Please complete confirmation step.", "")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load roadmap")
		return
	}

	respondOK(c, roadmap)
}

// GenerateRoadmapLegacy serves the previous API generation's roadmap
// generator (snake_case request, string-list timeline).
func (h *AthleteHandler) GenerateRoadmapLegacy(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req LegacyGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	roadmap, err := h.roadmapService.GenerateLegacy(c.Request.Context(), athleteID, req.PrimaryGoal, req.EventDate, domain.CycleName(req.CycleName))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, roadmap)
}

// respondOnboardingError maps onboarding service errors onto the envelope.
func (h *AthleteHandler) respondOnboardingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyOnboarded):
		respondAppError(c, http.StatusConflict, err.Error(), CodeAlreadyOnboarded)
	case errors.Is(err, service.ErrNoPendingOnboarding):
		respondAppError(c, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, service.ErrInvalidCycleName),
		errors.Is(err, service.ErrUnknownGoal),
		errors.Is(err, service.ErrProfileIncomplete),
		errors.Is(err, service.ErrInvalidProfile):
		respondAppError(c, http.StatusUnprocessableEntity, err.Error(), "")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func parseOptionalObjectID(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
