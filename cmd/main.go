package main

import (
	"fmt"
	"os"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/redis"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/db"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/handlers"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/repos"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/server"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/services"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	studentRepo := repos.NewStudentRepo(thePG, log)
	vespaScoreRepo := repos.NewVespaScoreRepo(thePG, log)
	questionResponseRepo := repos.NewQuestionResponseRepo(thePG, log)
	establishmentRepo := repos.NewEstablishmentRepo(thePG, log)

	// Legacy mirror
	log.Info("Setting up Knack client from main...")
	var legacyMirror services.LegacyMirror
	knackClient, err := knack.NewClient(log)
	if err != nil {
		log.Warn("Knack client init failed, legacy mirroring disabled", "error", err)
	} else {
		legacyMirror = knackClient
	}

	// Cycle window source, cached in Redis when available
	windowSource := services.NewRepoWindowSource(establishmentRepo, log)
	windowCache, err := redis.NewWindowCache(windowSource, log)
	if err != nil {
		log.Warn("Redis window cache unavailable, reading windows from Postgres", "error", err)
	} else {
		windowSource = windowCache
		defer windowCache.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	eligibilityService := services.NewEligibilityService(
		studentRepo, vespaScoreRepo, establishmentRepo, windowSource, log)
	submissionService := services.NewSubmissionService(
		studentRepo, vespaScoreRepo, questionResponseRepo, establishmentRepo, legacyMirror, log)

	// Handlers
	log.Info("Setting up handlers from main...")
	questionnaireHandler := handlers.NewQuestionnaireHandler(eligibilityService, submissionService, log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		QuestionnaireHandler: questionnaireHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
