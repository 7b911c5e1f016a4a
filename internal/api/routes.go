package api

import (
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	readinessService service.ReadinessService,
	onboardingService service.OnboardingService,
	roadmapService service.RoadmapService,
	goalTypeService service.GoalTypeService,
) {
	authHandler := NewAuthHandler(authService)
	athleteHandler := NewAthleteHandler(readinessService, onboardingService, roadmapService)
	goalTypeHandler := NewGoalTypeHandler(goalTypeService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			respondOK(c, gin.H{"userId": userID.Hex(), "role": role})
		})

		// --- Shared taxonomy ---
		sharedGroup := protected.Group("/shared")
		{
			// POST with a limit body; this shape predates the v2 API and
			// existing clients still send it.
			sharedGroup.POST("/goalType/get-all", goalTypeHandler.GetAll)
			sharedGroup.POST("/goalType/create", RoleMiddleware(domain.RoleAdmin), goalTypeHandler.Create)
		}

		// --- Athlete onboarding flow ---
		athleteGroup := protected.Group("/athlete")
		athleteGroup.Use(RoleMiddleware(domain.RoleAthlete))
		{
			// Readiness: evaluate is a repeatable preview, recommendation
			// reads the pending attempt.
			athleteGroup.POST("/readiness/evaluate", athleteHandler.EvaluateReadiness)
			athleteGroup.GET("/readiness/recommendation", athleteHandler.GetRecommendation)

			// Onboarding: create/confirm/complete (v2) plus the
			// cycle-transition confirm the wizard funnels into.
			athleteGroup.POST("/onboarding/create", athleteHandler.CreateOnboarding)
			athleteGroup.POST("/onboarding/confirm", athleteHandler.ConfirmOnboarding)
			athleteGroup.POST("/onboarding/complete", athleteHandler.CompleteOnboarding)
			athleteGroup.POST("/cycle-transition/confirm", athleteHandler.ConfirmTransition)

			// Roadmap: current plan plus the legacy generator.
			athleteGroup.GET("/roadmap", athleteHandler.GetRoadmap)
			athleteGroup.POST("/roadmap/generate", athleteHandler.GenerateRoadmapLegacy)
		}
	}
}
