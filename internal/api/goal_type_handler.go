package api

import (
	"errors"
	"fmt"
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// GoalTypeHandler serves the shared goal taxonomy endpoints.
type GoalTypeHandler struct {
	goalTypeService service.GoalTypeService
}

// NewGoalTypeHandler creates a new GoalTypeHandler.
func NewGoalTypeHandler(goalTypeService service.GoalTypeService) *GoalTypeHandler {
	return &GoalTypeHandler{goalTypeService: goalTypeService}
}

// --- Request/Response Structs ---

type GetAllGoalTypesRequest struct {
	Limit int64 `json:"limit"`
}

// GoalTypeRows wraps the list in the rows envelope the list endpoint has
// always used.
type GoalTypeRows struct {
	Rows []domain.GoalType `json:"rows"`
}

type CreateGoalTypeRequest struct {
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory,omitempty"`
}

// --- Handler Methods ---

// GetAll lists goal types. A POST with a limit for historical reasons; the
// original clients were built against this shape.
func (h *GoalTypeHandler) GetAll(c *gin.Context) {
	var req GetAllGoalTypesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	goalTypes, err := h.goalTypeService.List(c.Request.Context(), req.Limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list goal types")
		return
	}

	respondOK(c, GoalTypeRows{Rows: goalTypes})
}

// Create adds a goal type. Admin only.
func (h *GoalTypeHandler) Create(c *gin.Context) {
	var req CreateGoalTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	goalType, err := h.goalTypeService.Create(c.Request.Context(), req.Category, req.Subcategory)
	if err != nil {
		if errors.Is(err, service.ErrGoalTypeExists) {
			respondAppError(c, http.StatusConflict, err.Error(), "")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create goal type")
		return
	}

	c.JSON(http.StatusCreated, Envelope{StatusCode: http.StatusCreated, Data: goalType})
}
