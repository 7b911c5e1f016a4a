package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"peakform/coaching-app/internal/api"
	"peakform/coaching-app/internal/config"
	"peakform/coaching-app/internal/notify"
	"peakform/coaching-app/internal/repository/mongo"
	"peakform/coaching-app/internal/schedule"
	"peakform/coaching-app/internal/service"
	"peakform/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting PeakForm Coaching Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureOnboardingIndexes(ctx, appDB.Collection("onboardings"))
		mongo.EnsureRoadmapIndexes(ctx, appDB.Collection("roadmaps"))
		mongo.EnsureGoalTypeIndexes(ctx, appDB.Collection("goal_types"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("programs"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing media storage service...")
	mediaStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	onboardingRepo := mongo.NewMongoOnboardingRepository(appDB)
	roadmapRepo := mongo.NewMongoRoadmapRepository(appDB)
	goalTypeRepo := mongo.NewMongoGoalTypeRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	readinessService := service.NewReadinessService(onboardingRepo, programRepo)
	roadmapService := service.NewRoadmapService(roadmapRepo, programRepo, mediaStorage)
	goalTypeService := service.NewGoalTypeService(goalTypeRepo)

	var notifier service.WelcomeNotifier
	if cfg.Email.ResendAPIKey != "" {
		notifier = notify.NewResendNotifier(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
	} else {
		log.Println("No Resend API key configured; welcome emails disabled.")
	}
	onboardingService := service.NewOnboardingService(onboardingRepo, userRepo, goalTypeRepo, readinessService, roadmapService, notifier)

	// --- Seed goal taxonomy ---
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := goalTypeService.Seed(seedCtx); err != nil {
		log.Printf("WARN: goal type seeding failed: %v", err)
	}
	seedCancel()

	// --- Start cycle rollover job ---
	rolloverCron, err := schedule.StartCycleRollover(cfg.Schedule.CycleRollover, roadmapService)
	if err != nil {
		log.Fatalf("FATAL: Invalid cycle rollover schedule %q: %v", cfg.Schedule.CycleRollover, err)
	}
	defer rolloverCron.Stop()

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, readinessService, onboardingService, roadmapService, goalTypeService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
